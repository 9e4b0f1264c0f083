package user

import (
	"context"
	"errors"

	"github.com/Khodkerutuja/WaitlistWizard/internal/auth"
	"github.com/Khodkerutuja/WaitlistWizard/internal/logger"
	"github.com/Khodkerutuja/WaitlistWizard/internal/wallet"
)

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("role must be USER or POWER_USER")
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, string, string, error)
	Login(ctx context.Context, req LoginRequest) (*User, string, string, error)
	GetByID(ctx context.Context, userID int) (*User, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, *User, error)
}

type service struct {
	repo      Repository
	wallets   wallet.Repository
	jwtSecret string
}

func NewService(repo Repository, wallets wallet.Repository, jwtSecret string) Service {
	return &service{
		repo:      repo,
		wallets:   wallets,
		jwtSecret: jwtSecret,
	}
}

// Register creates the account and its wallet. Every account gets a
// wallet at signup so the payment path never has to lazily provision
// one. Admin accounts are seeded out of band, not registered.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, string, string, error) {
	role := req.Role
	if role == "" {
		role = auth.RoleUser
	}
	if role != auth.RoleUser && role != auth.RolePowerUser {
		return nil, "", "", ErrInvalidRole
	}

	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, "", "", err
	}
	if exists {
		return nil, "", "", ErrEmailExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", "", err
	}

	u, err := s.repo.Create(ctx, &User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         role,
		PhoneNumber:  req.PhoneNumber,
		Address:      req.Address,
	})
	if err != nil {
		return nil, "", "", err
	}

	if _, err := s.wallets.CreateWallet(ctx, u.ID); err != nil && !errors.Is(err, wallet.ErrWalletExists) {
		return nil, "", "", err
	}

	accessToken, refreshToken, err := auth.GenerateTokens(u.ID, u.Email, u.Role, s.jwtSecret)
	if err != nil {
		return nil, "", "", err
	}

	logger.Infof("User %d registered (%s)", u.ID, u.Role)
	return u, accessToken, refreshToken, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := auth.GenerateTokens(u.ID, u.Email, u.Role, s.jwtSecret)
	if err != nil {
		return nil, "", "", err
	}

	return u, accessToken, refreshToken, nil
}

func (s *service) GetByID(ctx context.Context, userID int) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	_, claims, err := auth.RefreshAccessToken(refreshToken, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	u, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", nil, ErrUserNotFound
	}

	newAccessToken, err := auth.GenerateAccessToken(u.ID, u.Email, u.Role, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	return newAccessToken, u, nil
}
