package repository

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	repo := NewUserRepository(db)
	cleanup := func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet sqlmock expectations: %v", err)
		}
		_ = db.Close()
	}
	return repo, mock, cleanup
}

func userColumns() []string {
	return []string{"id", "username", "password_hash", "role", "api_key"}
}

func TestUserRepository_Create(t *testing.T) {
	tests := []struct {
		name           string
		username       string
		apiKey         string
		mockExpect     func(sqlmock.Sqlmock)
		wantID         int
		wantErr        bool
		errContainsStr string
	}{
		{
			name:     "success without api key",
			username: "alice",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
					WithArgs("alice", "h123", "user", nil).
					WillReturnResult(sqlmock.NewResult(42, 1))
			},
			wantID: 42,
		},
		{
			name:     "success with api key",
			username: "bot",
			apiKey:   "k-1",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
					WithArgs("bot", "h123", "user", "k-1").
					WillReturnResult(sqlmock.NewResult(7, 1))
			},
			wantID: 7,
		},
		{
			name:     "exec error",
			username: "bob",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
					WithArgs("bob", "h123", "user", nil).
					WillReturnError(errors.New("db exec failed"))
			},
			wantErr:        true,
			errContainsStr: "insert user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := newMockRepo(t)
			defer cleanup()

			tt.mockExpect(mock)

			id, err := repo.Create(context.Background(), tt.username, "h123", "user", tt.apiKey)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if tt.errContainsStr != "" && !strings.Contains(err.Error(), tt.errContainsStr) {
					t.Fatalf("error %q does not contain %q", err, tt.errContainsStr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id != tt.wantID {
				t.Fatalf("expected id=%d, got %d", tt.wantID, id)
			}
		})
	}
}

func TestUserRepository_GetByUsername(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock, cleanup := newMockRepo(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta(selectUserByNameSQL)).
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows(userColumns()).
				AddRow(1, "alice", "hash", "admin", nil))

		u, err := repo.GetByUsername(context.Background(), "alice")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if u == nil || u.Username != "alice" || u.Role != "admin" || u.APIKey != "" {
			t.Fatalf("unexpected user: %+v", u)
		}
	})

	t.Run("not found returns nil, nil", func(t *testing.T) {
		repo, mock, cleanup := newMockRepo(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta(selectUserByNameSQL)).
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows(userColumns()))

		u, err := repo.GetByUsername(context.Background(), "ghost")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if u != nil {
			t.Fatalf("expected nil user, got %+v", u)
		}
	})
}

func TestUserRepository_GetByAPIKey(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(selectUserByAPIKeySQL)).
		WithArgs("k-1").
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(3, "bot", "hash", "user", "k-1"))

	u, err := repo.GetByAPIKey(context.Background(), "k-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u == nil || u.Username != "bot" || u.APIKey != "k-1" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestUserRepository_List(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(selectAllUsersSQL)).
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(1, "admin", "h1", "admin", nil).
			AddRow(2, "lello", "h2", "user", nil))

	users, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 || users[0].Username != "admin" || users[1].Role != "user" {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestUserRepository_UpdatePassword_NoSuchUser(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(updatePasswordSQL)).
		WithArgs("newhash", "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePassword(context.Background(), "ghost", "newhash")
	if err == nil || !strings.Contains(err.Error(), "no such user") {
		t.Fatalf("expected no-such-user error, got %v", err)
	}
}

func TestUserRepository_Delete(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(deleteUserSQL)).
		WithArgs("lello").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "lello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
