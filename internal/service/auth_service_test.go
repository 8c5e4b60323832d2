package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/sla-service/internal/config"
	"github.com/spec-kit/sla-service/internal/domain"
	apperrors "github.com/spec-kit/sla-service/pkg/util"
)

type memAdminRepo struct {
	admins []domain.Admin
}

func (m *memAdminRepo) Create(ctx context.Context, admin *domain.Admin) error {
	admin.ID = "a1"
	m.admins = append(m.admins, *admin)
	return nil
}

func (m *memAdminRepo) GetByID(ctx context.Context, id string) (*domain.Admin, error) {
	for i := range m.admins {
		if m.admins[i].ID == id {
			return &m.admins[i], nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memAdminRepo) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	for i := range m.admins {
		if m.admins[i].Email == email {
			return &m.admins[i], nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memAdminRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(m.admins)), nil
}

func newTestAuthService(repo *memAdminRepo) *AuthService {
	return NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 5,
		BcryptCost:            bcrypt.MinCost,
	}, repo)
}

func TestBootstrapAdmin_CreatesFirstAdmin(t *testing.T) {
	repo := &memAdminRepo{}
	svc := newTestAuthService(repo)

	admin, err := svc.BootstrapAdmin(context.Background(), "Root", "root@example.com", "changeme123")
	require.NoError(t, err)
	assert.NotEmpty(t, admin.ID)
	assert.True(t, admin.Active)
	require.Len(t, repo.admins, 1)
}

func TestBootstrapAdmin_ClosedOnceAdminExists(t *testing.T) {
	repo := &memAdminRepo{admins: []domain.Admin{{ID: "a1", Email: "root@example.com"}}}
	svc := newTestAuthService(repo)

	_, err := svc.BootstrapAdmin(context.Background(), "Second", "second@example.com", "changeme123")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
	assert.Len(t, repo.admins, 1)
}

func TestRegisterAdmin_RejectsShortPassword(t *testing.T) {
	svc := newTestAuthService(&memAdminRepo{})

	_, err := svc.RegisterAdmin(context.Background(), "Root", "root@example.com", "short")
	require.Error(t, err)
}

func TestLogin_AfterBootstrap(t *testing.T) {
	repo := &memAdminRepo{}
	svc := newTestAuthService(repo)

	_, err := svc.BootstrapAdmin(context.Background(), "Root", "Root@Example.com", "changeme123")
	require.NoError(t, err)

	// The stored email is normalized, so a differently-cased login still works.
	token, expiresAt, admin, err := svc.Login(context.Background(), "ROOT@example.com", "changeme123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.False(t, expiresAt.IsZero())
	assert.Equal(t, "root@example.com", admin.Email)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.AdminID)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := &memAdminRepo{}
	svc := newTestAuthService(repo)

	_, err := svc.BootstrapAdmin(context.Background(), "Root", "root@example.com", "changeme123")
	require.NoError(t, err)

	_, _, _, err = svc.Login(context.Background(), "root@example.com", "wrong-password")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UNAUTHORIZED", domainErr.Code)
}
