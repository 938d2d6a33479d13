package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newMemoryDenylist() *memoryDenylist {
	return &memoryDenylist{revoked: make(map[string]time.Duration)}
}

func (d *memoryDenylist) Revoke(ctx context.Context, id string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[id] = ttl
	return nil
}

func (d *memoryDenylist) IsRevoked(ctx context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	_, ok := d.revoked[id]
	return ok, nil
}

func TestLoginAndValidate(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	user := testhelpers.CreateUser(t, db, "cook")
	svc := service.NewAuthService(db, "test-secret", time.Hour, newMemoryDenylist())
	ctx := context.Background()

	token, err := svc.Login(ctx, user.Email, testhelpers.Password)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "cook", claims.Username)
	assert.Equal(t, "user", claims.Role)
	assert.NotEmpty(t, claims.ID)

	_, err = svc.Login(ctx, user.Email, "wrong-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", testhelpers.Password)
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestValidateTokenRejects(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	user := testhelpers.CreateUser(t, db, "cook")
	ctx := context.Background()

	expired := service.NewAuthService(db, "test-secret", -time.Minute, nil)
	token, err := expired.GenerateToken(user)
	require.NoError(t, err)
	_, err = expired.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	svc := service.NewAuthService(db, "test-secret", time.Hour, nil)
	other := service.NewAuthService(db, "other-secret", time.Hour, nil)
	token, err = other.GenerateToken(user)
	require.NoError(t, err)
	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": user.ID.String()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateToken(ctx, unsigned)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	_, err = svc.ValidateToken(ctx, "garbage")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestLogoutRevokesToken(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	user := testhelpers.CreateUser(t, db, "cook")
	denylist := newMemoryDenylist()
	svc := service.NewAuthService(db, "test-secret", time.Hour, denylist)
	ctx := context.Background()

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))
	assert.LessOrEqual(t, denylist.revoked[claims.ID], time.Hour)

	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	fresh, err := svc.GenerateToken(user)
	require.NoError(t, err)
	_, err = svc.ValidateToken(ctx, fresh)
	assert.NoError(t, err, "other tokens of the same user stay valid")
}

func TestValidateTokenDenylistUnavailable(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	user := testhelpers.CreateUser(t, db, "cook")
	denylist := newMemoryDenylist()
	denylist.err = errors.New("connection refused")
	svc := service.NewAuthService(db, "test-secret", time.Hour, denylist)

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)
	_, err = svc.ValidateToken(context.Background(), token)
	assert.NoError(t, err)
}
