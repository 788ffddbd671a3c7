package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pkgAuth "github.com/saifulmridha/boighor-backend/pkg/auth"
	"github.com/saifulmridha/boighor-backend/pkg/config"
	"github.com/saifulmridha/boighor-backend/pkg/db/models"
	"github.com/saifulmridha/boighor-backend/pkg/enums"
	pkgerrors "github.com/saifulmridha/boighor-backend/pkg/errors"
	"github.com/saifulmridha/boighor-backend/pkg/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUsersRepo struct {
	byEmail    map[string]*models.User
	lastLogins map[uuid.UUID]time.Time
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{
		byEmail:    make(map[string]*models.User),
		lastLogins: make(map[uuid.UUID]time.Time),
	}
}

func (f *fakeUsersRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUsersRepo) Create(_ context.Context, user *models.User) error {
	copied := *user
	f.byEmail[user.Email] = &copied
	return nil
}

func (f *fakeUsersRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	f.lastLogins[id] = at
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "boighor-test",
		ExpirationMinutes: 60,
	}
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

// newTestService freezes the service clock at a point captured from the real
// clock, keeping stamp assertions deterministic while minted tokens stay
// inside their validity window when parsed.
func newTestService(t *testing.T, repo *fakeUsersRepo) (Service, time.Time) {
	t.Helper()

	svc, err := NewService(repo, testJWTConfig(), testPasswordConfig())
	require.NoError(t, err)

	frozen := time.Now().UTC().Truncate(time.Second)
	svc.(*service).now = func() time.Time {
		return frozen
	}
	return svc, frozen
}

func TestRegisterHashesPasswordAndIssuesToken(t *testing.T) {
	t.Parallel()

	repo := newFakeUsersRepo()
	svc, _ := newTestService(t, repo)

	result, err := svc.Register(context.Background(), RegisterInput{
		Email:    "Reader@Example.COM ",
		Password: "correct horse",
		FullName: "Test Reader",
	})
	require.NoError(t, err)
	require.NotNil(t, result.User)
	assert.Equal(t, "reader@example.com", result.User.Email)
	assert.Equal(t, enums.UserRoleCustomer, result.User.Role)
	assert.NotEqual(t, "correct horse", result.User.PasswordHash)

	valid, err := security.VerifyPassword("correct horse", result.User.PasswordHash)
	require.NoError(t, err)
	assert.True(t, valid)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.Equal(t, enums.UserRoleCustomer, claims.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := newFakeUsersRepo()
	svc, _ := newTestService(t, repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "reader@example.com",
		Password: "correct horse",
		FullName: "Test Reader",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{
		Email:    "READER@example.com",
		Password: "other pass",
		FullName: "Someone Else",
	})
	var perr *pkgerrors.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, pkgerrors.CodeConflict, perr.Code())
}

func TestLoginSuccessStampsLastLogin(t *testing.T) {
	t.Parallel()

	repo := newFakeUsersRepo()
	svc, frozen := newTestService(t, repo)

	registered, err := svc.Register(context.Background(), RegisterInput{
		Email:    "reader@example.com",
		Password: "correct horse",
		FullName: "Test Reader",
	})
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "reader@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, result.User.ID)
	require.NotNil(t, result.User.LastLoginAt)

	stamped, ok := repo.lastLogins[registered.User.ID]
	require.True(t, ok)
	assert.Equal(t, frozen, stamped)
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()

	repo := newFakeUsersRepo()
	svc, _ := newTestService(t, repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "reader@example.com",
		Password: "correct horse",
		FullName: "Test Reader",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginInput{
		Email:    "reader@example.com",
		Password: "wrong horse",
	})
	var perr *pkgerrors.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, perr.Code())
	assert.Empty(t, repo.lastLogins)
}

func TestLoginUnknownEmail(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, newFakeUsersRepo())

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	var perr *pkgerrors.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, perr.Code())
}

func TestLoginInactiveAccount(t *testing.T) {
	t.Parallel()

	repo := newFakeUsersRepo()
	svc, _ := newTestService(t, repo)

	registered, err := svc.Register(context.Background(), RegisterInput{
		Email:    "reader@example.com",
		Password: "correct horse",
		FullName: "Test Reader",
	})
	require.NoError(t, err)
	repo.byEmail[registered.User.Email].IsActive = false

	_, err = svc.Login(context.Background(), LoginInput{
		Email:    "reader@example.com",
		Password: "correct horse",
	})
	var perr *pkgerrors.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, perr.Code())
}
