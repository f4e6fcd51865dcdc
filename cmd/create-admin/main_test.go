package main

import (
	"context"
	"testing"
	"time"

	"civic-portal/internal/domain"
	"civic-portal/internal/repository"
	"civic-portal/internal/service"
	"civic-portal/internal/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestBuildAccountNormalizesEmail(t *testing.T) {
	user, err := buildAccount("Jane Doe", "  Jane@City.gov ", "s3cret", "admin", "general")
	require.NoError(t, err)

	assert.Equal(t, "jane@city.gov", user.Email)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	require.NotNil(t, user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte("s3cret")))
}

func TestSeededAccountCanStaffLogin(t *testing.T) {
	users := repository.NewMemoryUsersRepo()
	svc := service.NewAuthService(users, token.NewIssuer("test-secret", time.Hour), zap.NewNop())

	user, err := buildAccount("Officer", "Officer@City.gov", "s3cret", "staff", "water")
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), user))

	res, err := svc.StaffLogin(context.Background(), "officer@city.gov", "s3cret", "")
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.User.ID)
}
