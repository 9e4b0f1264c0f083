package user

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Khodkerutuja/WaitlistWizard/internal/auth"
	"github.com/Khodkerutuja/WaitlistWizard/internal/logger"
	"github.com/Khodkerutuja/WaitlistWizard/internal/wallet"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type fakeUserRepo struct {
	byEmail map[string]*User
	byID    map[int]*User
	nextID  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*User{}, byID: map[int]*User{}, nextID: 1}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *User) (*User, error) {
	created := *u
	created.ID = f.nextID
	f.nextID++
	f.byEmail[created.Email] = &created
	f.byID[created.ID] = &created
	return &created, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id int) (*User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, ok := f.byEmail[email]
	return ok, nil
}

type fakeWalletRepo struct {
	wallet.Repository

	created []int
}

func (f *fakeWalletRepo) CreateWallet(ctx context.Context, ownerID int) (*wallet.Wallet, error) {
	f.created = append(f.created, ownerID)
	return &wallet.Wallet{ID: ownerID, OwnerID: ownerID}, nil
}

func setupUserService() (Service, *fakeUserRepo, *fakeWalletRepo) {
	repo := newFakeUserRepo()
	wallets := &fakeWalletRepo{}
	return NewService(repo, wallets, "test-secret"), repo, wallets
}

func TestRegister_CreatesWallet(t *testing.T) {
	svc, _, wallets := setupUserService()

	u, access, refresh, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleUser, u.Role)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.Equal(t, []int{u.ID}, wallets.created)
}

func TestRegister_PowerUser(t *testing.T) {
	svc, _, _ := setupUserService()

	u, _, _, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Bob",
		Email:    "bob@example.com",
		Password: "correct horse",
		Role:     auth.RolePowerUser,
	})
	require.NoError(t, err)
	assert.Equal(t, auth.RolePowerUser, u.Role)
}

func TestRegister_AdminRoleRejected(t *testing.T) {
	svc, _, wallets := setupUserService()

	_, _, _, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Mallory",
		Email:    "mallory@example.com",
		Password: "correct horse",
		Role:     auth.RoleAdmin,
	})
	require.ErrorIs(t, err, ErrInvalidRole)
	assert.Empty(t, wallets.created)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := setupUserService()

	_, _, _, err := svc.Register(context.Background(), RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "correct horse",
	})
	require.NoError(t, err)

	_, _, _, err = svc.Register(context.Background(), RegisterRequest{
		Name: "Alice Again", Email: "alice@example.com", Password: "correct horse",
	})
	require.ErrorIs(t, err, ErrEmailExists)
}

func TestLogin(t *testing.T) {
	svc, _, _ := setupUserService()

	_, _, _, err := svc.Register(context.Background(), RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "correct horse",
	})
	require.NoError(t, err)

	u, access, _, err := svc.Login(context.Background(), LoginRequest{
		Email: "alice@example.com", Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEmpty(t, access)

	_, _, _, err = svc.Login(context.Background(), LoginRequest{
		Email: "alice@example.com", Password: "wrong",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, _, err = svc.Login(context.Background(), LoginRequest{
		Email: "nobody@example.com", Password: "correct horse",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshToken(t *testing.T) {
	svc, _, _ := setupUserService()

	_, _, refresh, err := svc.Register(context.Background(), RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "correct horse",
	})
	require.NoError(t, err)

	newAccess, u, err := svc.RefreshToken(context.Background(), refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, newAccess)
	assert.Equal(t, "alice@example.com", u.Email)

	_, _, err = svc.RefreshToken(context.Background(), "garbage")
	require.Error(t, err)
}
