package service

import (
	"context"
	"time"

	"garage_gateway/internal/eventlog"
	"garage_gateway/internal/models"
	"garage_gateway/internal/repository"
	"garage_gateway/internal/state"
)

// Authorization is the auth gate: it verifies caller identity (basic
// credentials, API keys, bearer tokens) and authorizes role-gated
// operations on the credential store.
type Authorization interface {
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	AuthenticateAPIKey(ctx context.Context, key string) (*models.User, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (*models.User, error)
	CheckUser(ctx context.Context, username, password string) bool
	GetRole(ctx context.Context, username string) (string, error)
	AddUser(ctx context.Context, actor *models.User, username, password string) error
	RemoveUser(ctx context.Context, actor *models.User, username string) error
	ListUsers(ctx context.Context, actor *models.User) (map[string]string, error)
	ChangePassword(ctx context.Context, actor *models.User, username, oldPassword, newPassword string, adminMode bool) error
}

// Sessions tracks logins of the secondary (bot) client population.
type Sessions interface {
	LoginUser(clientID string)
	LoginAdmin(clientID string) time.Time
	Logout(clientID string)
	IsAuthorizedAdmin(clientID string) bool
	IsAuthorizedAny(clientID string) bool
}

// Gateway validates and forwards outbound actuator commands and external
// position updates.
type Gateway interface {
	SendCommand(value int) error
	IngestPosition(value any, lat, lon *float64) error
}

// Monitoring exposes read-only device state.
type Monitoring interface {
	Snapshot() models.Snapshot
}

// EventLog exposes the bounded audit trail.
type EventLog interface {
	Recent(n int) []models.Event
}

// Service aggregates all sub-services.
type Service struct {
	Authorization
	Sessions
	Gateway
	Monitoring
	EventLog
}

// Config carries the deployment knobs the services need.
type Config struct {
	DeviceID   int
	SigningKey string
	TokenTTL   time.Duration
	APIKey     string // deployment-wide key; empty disables the key path
	SessionTTL time.Duration
}

// Deps are the shared resources the services operate on.
type Deps struct {
	Repos  *repository.Repository
	Store  *state.Store
	Events *eventlog.Log
	Bus    Publisher
	Config Config
}

// NewService wires shared state into concrete services.
func NewService(d Deps) *Service {
	return &Service{
		Authorization: NewAuthService(d.Repos.Users, d.Events, d.Config),
		Sessions:      NewSessionRegistry(d.Config.SessionTTL),
		Gateway:       NewGatewayService(d.Bus, d.Store, d.Events, d.Config.DeviceID),
		Monitoring:    NewMonitoringService(d.Store),
		EventLog:      NewEventLogService(d.Events),
	}
}
