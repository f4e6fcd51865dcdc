package service

import (
	"context"
	"testing"
	"time"

	"civic-portal/internal/domain"
	"civic-portal/internal/repository"
	"civic-portal/internal/token"
	"civic-portal/internal/xerrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture(t *testing.T) (*AuthService, repository.UsersRepo) {
	t.Helper()
	users := repository.NewMemoryUsersRepo()
	issuer := token.NewIssuer("test-secret", time.Hour)
	return NewAuthService(users, issuer, zap.NewNop()), users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{Name: "Asha", Email: "Asha@Example.com", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, domain.RoleCitizen, res.User.Role)
	assert.Equal(t, domain.DefaultDepartment, res.User.Department)
	assert.Equal(t, "asha@example.com", res.User.Email, "email is stored lowercased")

	login, err := svc.Login(ctx, "asha@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	_, err = svc.Login(ctx, "asha@example.com", "wrong")
	assert.ErrorIs(t, err, xerrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "s3cret")
	assert.ErrorIs(t, err, xerrors.ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@b.com", Password: "x"})
	assert.ErrorIs(t, err, xerrors.ErrNameRequired)

	_, err = svc.Register(ctx, RegisterInput{Name: "A", Password: "x"})
	assert.ErrorIs(t, err, xerrors.ErrEmailRequired)

	_, err = svc.Register(ctx, RegisterInput{Name: "A", Email: "a@b.com"})
	assert.ErrorIs(t, err, xerrors.ErrPasswordRequired)

	_, err = svc.Register(ctx, RegisterInput{Name: "A", Email: "a@b.com", Password: "x"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Name: "B", Email: "A@B.com", Password: "y"})
	assert.ErrorIs(t, err, xerrors.ErrEmailAlreadyInUse)
}

func TestStaffLoginRejectsCitizens(t *testing.T) {
	svc, users := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Asha", Email: "asha@example.com", Password: "s3cret"})
	require.NoError(t, err)

	_, err = svc.StaffLogin(ctx, "asha@example.com", "s3cret", "")
	assert.ErrorIs(t, err, xerrors.ErrNotStaffAccount)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.DefaultCost)
	require.NoError(t, err)
	hashed := string(hash)
	staff := &domain.User{
		Name: "Officer", Email: "officer@city.gov",
		Role: domain.RoleStaff, Department: "water", PasswordHash: &hashed,
	}
	require.NoError(t, users.Create(ctx, staff))

	res, err := svc.StaffLogin(ctx, "officer@city.gov", "s3cret", "")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, domain.RoleStaff, res.User.Role)
}

func TestResolveProviderIsIdempotent(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	claims := &token.ProviderClaims{Subject: "idp|123", Email: "new@example.com", Name: "New User"}

	first, err := svc.ResolveProvider(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCitizen, first.Role)
	assert.Equal(t, "New User", first.Name)

	second, err := svc.ResolveProvider(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestResolveProviderBackfillsByEmail(t *testing.T) {
	svc, users := newAuthFixture(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{Name: "Asha", Email: "asha@example.com", Password: "s3cret"})
	require.NoError(t, err)

	claims := &token.ProviderClaims{Subject: "idp|456", Email: "Asha@Example.com"}
	resolved, err := svc.ResolveProvider(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, resolved.ID)

	// Subsequent lookups resolve by subject directly.
	bySubject, err := users.GetByProviderUID(ctx, "idp|456")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, bySubject.ID)
}

func TestResolveProviderPlaceholderName(t *testing.T) {
	svc, _ := newAuthFixture(t)

	resolved, err := svc.ResolveProvider(context.Background(),
		&token.ProviderClaims{Subject: "idp|789", Email: "anon@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Citizen", resolved.Name)
}
