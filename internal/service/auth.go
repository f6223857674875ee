package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"garage_gateway/internal/eventlog"
	"garage_gateway/internal/models"
	"garage_gateway/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = time.Hour

// apiIdentity is the synthetic identity behind the deployment-wide API key.
// It is admin-equivalent but has no credential record.
const apiIdentity = "api"

// AuthService is the auth gate over the persisted credential records.
type AuthService struct {
	users      repository.Users
	events     *eventlog.Log
	signingKey []byte
	tokenTTL   time.Duration
	apiKey     string
}

func NewAuthService(users repository.Users, events *eventlog.Log, cfg Config) *AuthService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &AuthService{
		users:      users,
		events:     events,
		signingKey: []byte(cfg.SigningKey),
		tokenTTL:   ttl,
		apiKey:     cfg.APIKey,
	}
}

// Authenticate verifies username+password. Unknown users and password
// mismatches both collapse into ErrUnauthorized so callers cannot probe
// which usernames exist.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrUnauthorized
	}
	return u, nil
}

// AuthenticateAPIKey resolves an API key to an identity. The deployment
// key (if configured) yields a synthetic admin identity; otherwise the key
// must match a user's stored key.
func (s *AuthService) AuthenticateAPIKey(ctx context.Context, key string) (*models.User, error) {
	if key == "" {
		return nil, ErrUnauthorized
	}
	if s.apiKey != "" && key == s.apiKey {
		return &models.User{Username: apiIdentity, Role: models.RoleAdmin}, nil
	}
	u, err := s.users.GetByAPIKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUnauthorized
	}
	return u, nil
}

// Claims defines JWT claims issued to the web front-end.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role"`
}

// GenerateToken validates credentials and returns a signed JWT.
func (s *AuthService) GenerateToken(ctx context.Context, username, password string) (string, error) {
	u, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Username: u.Username,
		Role:     u.Role,
	})
	return token.SignedString(s.signingKey)
}

// ParseToken verifies a JWT and returns the identity it carries.
func (s *AuthService) ParseToken(accessToken string) (*models.User, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return nil, errors.Join(ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrUnauthorized
	}
	return &models.User{Username: claims.Username, Role: claims.Role}, nil
}

// CheckUser reports whether the credentials are valid, without leaking why
// they are not.
func (s *AuthService) CheckUser(ctx context.Context, username, password string) bool {
	_, err := s.Authenticate(ctx, username, password)
	return err == nil
}

// GetRole returns the stored role for a username, "none" when unknown.
func (s *AuthService) GetRole(ctx context.Context, username string) (string, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "none", nil
	}
	return u.Role, nil
}

// requireAdmin authorizes role-gated operations.
func requireAdmin(actor *models.User) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// AddUser creates a new user-role account. Admin only.
func (s *AuthService) AddUser(ctx context.Context, actor *models.User, username, password string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrBadRequest
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrConflict
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	if _, err := s.users.Create(ctx, username, hash, models.RoleUser, ""); err != nil {
		return err
	}

	s.events.Push(models.EventUserAdded, map[string]any{"by": actor.Username, "name": username})
	return nil
}

// RemoveUser deletes an account. Admin only.
func (s *AuthService) RemoveUser(ctx context.Context, actor *models.User, username string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if username == "" {
		return ErrBadRequest
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	if err := s.users.Delete(ctx, username); err != nil {
		return err
	}

	s.events.Push(models.EventUserRemoved, map[string]any{"by": actor.Username, "name": username})
	return nil
}

// ListUsers returns username -> role. Admin only; hashes and keys are
// never included.
func (s *AuthService) ListUsers(ctx context.Context, actor *models.User) (map[string]string, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(users))
	for _, u := range users {
		out[u.Username] = u.Role
	}
	return out, nil
}

// ChangePassword re-hashes and persists a new credential.
//
// adminMode=true requires an admin-equivalent actor and skips the
// old-password proof. adminMode=false is self-service: any authenticated
// actor may rotate a password by proving the current one.
func (s *AuthService) ChangePassword(ctx context.Context, actor *models.User, username, oldPassword, newPassword string, adminMode bool) error {
	if username == "" || newPassword == "" {
		return ErrBadRequest
	}

	target, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrNotFound
	}

	if adminMode {
		if err := requireAdmin(actor); err != nil {
			return err
		}
	} else {
		if oldPassword == "" {
			return ErrBadRequest
		}
		if bcrypt.CompareHashAndPassword([]byte(target.PasswordHash), []byte(oldPassword)) != nil {
			return ErrUnauthorized
		}
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, username, hash); err != nil {
		return err
	}

	s.events.Push(models.EventPasswordChanged, map[string]any{"user": username})
	return nil
}

// hashPassword hashes a non-empty password with bcrypt.
func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", ErrBadRequest
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
