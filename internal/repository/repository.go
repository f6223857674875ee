package repository

import (
	"context"
	"database/sql"

	"garage_gateway/internal/models"
)

// Users persists credential records. Telemetry state and the event log are
// deliberately in-memory only (lost on restart), so users are the only
// durable resource.
type Users interface {
	Create(ctx context.Context, username, passwordHash, role, apiKey string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdatePassword(ctx context.Context, username, passwordHash string) error
	Delete(ctx context.Context, username string) error
}

type Repository struct {
	Users Users
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Users: NewUserRepository(db),
	}
}
