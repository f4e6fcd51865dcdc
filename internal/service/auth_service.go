package service

import (
	"context"
	"errors"
	"strings"

	"civic-portal/internal/domain"
	"civic-portal/internal/repository"
	"civic-portal/internal/token"
	"civic-portal/internal/xerrors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	users  repository.UsersRepo
	issuer *token.Issuer
	logger *zap.Logger
}

func NewAuthService(users repository.UsersRepo, issuer *token.Issuer, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, issuer: issuer, logger: logger}
}

type AuthResult struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password string `json:"password"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return nil, xerrors.ErrNameRequired
	case strings.TrimSpace(in.Email) == "":
		return nil, xerrors.ErrEmailRequired
	case in.Password == "":
		return nil, xerrors.ErrPasswordRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashed := string(hash)

	user := &domain.User{
		Name:         in.Name,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:        in.Phone,
		Address:      in.Address,
		Role:         domain.RoleCitizen,
		Department:   domain.DefaultDepartment,
		PasswordHash: &hashed,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.result(user, "", "")
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, xerrors.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == nil ||
		bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)) != nil {
		return nil, xerrors.ErrInvalidCredentials
	}

	return s.result(user, "", "")
}

// StaffLogin confirms a staff/admin account and issues a token carrying the
// role and the selected department.
func (s *AuthService) StaffLogin(ctx context.Context, email, password, department string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsStaff() && !user.IsAdmin() {
		return nil, xerrors.ErrNotStaffAccount
	}
	if user.PasswordHash == nil ||
		bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)) != nil {
		return nil, xerrors.ErrInvalidCredentials
	}
	if department == "" {
		department = user.Department
	}

	return s.result(user, string(user.Role), department)
}

// ResolveProvider maps a verified identity-provider claim set to a local
// user, provisioning a citizen account on first sight. Resolution order:
// provider subject, then email (backfilling the subject), then create.
// Resolving the same subject twice yields the same user.
func (s *AuthService) ResolveProvider(ctx context.Context, claims *token.ProviderClaims) (*domain.User, error) {
	user, err := s.users.GetByProviderUID(ctx, claims.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, xerrors.ErrNotFound) {
		return nil, err
	}

	if claims.Email != "" {
		user, err = s.users.GetByEmail(ctx, strings.ToLower(claims.Email))
		if err == nil {
			if linkErr := s.users.LinkProviderUID(ctx, user.ID, claims.Subject); linkErr != nil {
				return nil, linkErr
			}
			user.ProviderUID = &claims.Subject
			return user, nil
		}
		if !errors.Is(err, xerrors.ErrNotFound) {
			return nil, err
		}
	}

	name := claims.Name
	if name == "" {
		name = "Citizen"
	}
	uid := claims.Subject
	user = &domain.User{
		ProviderUID: &uid,
		Name:        name,
		Email:       strings.ToLower(claims.Email),
		Role:        domain.RoleCitizen,
		Department:  domain.DefaultDepartment,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("provisioned user from identity provider",
		zap.String("user_id", user.ID), zap.String("subject", claims.Subject))
	return user, nil
}

// ProviderLogin exchanges verified provider claims for a session token.
func (s *AuthService) ProviderLogin(ctx context.Context, claims *token.ProviderClaims) (*AuthResult, error) {
	user, err := s.ResolveProvider(ctx, claims)
	if err != nil {
		return nil, err
	}
	return s.result(user, "", "")
}

// ProviderStaffLogin additionally requires the resolved account to already
// hold a staff or admin role; provider sign-in never grants one.
func (s *AuthService) ProviderStaffLogin(ctx context.Context, claims *token.ProviderClaims, department string) (*AuthResult, error) {
	user, err := s.ResolveProvider(ctx, claims)
	if err != nil {
		return nil, err
	}
	if !user.IsStaff() && !user.IsAdmin() {
		return nil, xerrors.ErrNotStaffAccount
	}
	if department == "" {
		department = user.Department
	}
	return s.result(user, string(user.Role), department)
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) result(user *domain.User, role, department string) (*AuthResult, error) {
	tok, err := s.issuer.Issue(user.ID, role, department)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: tok}, nil
}
