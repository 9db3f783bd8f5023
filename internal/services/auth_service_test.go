package services

import (
	"context"
	"testing"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/repositories/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth() AuthService {
	now := fixedNow
	return AuthService{Users: memstore.New(), Secret: []byte("test-secret"), TokenTTL: time.Hour, Now: func() time.Time { return now }}
}

func TestSignupLoginRoundTrip(t *testing.T) {
	svc := newAuth()
	ctx := context.Background()

	u, err := svc.Signup(ctx, SignupInput{Email: " Rider@Example.com ", Password: "secret123", Role: "operator"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOperator, u.Role)
	assert.Equal(t, "rider@example.com", u.Email)

	token, _, err := svc.Login(ctx, LoginInput{Email: "rider@example.com", Password: "secret123"})
	require.NoError(t, err)

	actor, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.Actor{UserID: u.ID, Role: domain.RoleOperator}, actor)
}

func TestSignupRules(t *testing.T) {
	svc := newAuth()
	ctx := context.Background()

	u, err := svc.Signup(ctx, SignupInput{Email: "a@x.io", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCommuter, u.Role)

	_, err = svc.Signup(ctx, SignupInput{Email: "A@x.io", Password: "secret123"})
	assert.True(t, domain.IsConflict(err))

	_, err = svc.Signup(ctx, SignupInput{Email: "b@x.io", Password: "secret123", Role: "Admin"})
	assert.True(t, domain.IsForbidden(err))

	_, err = svc.Signup(ctx, SignupInput{Email: "c@x.io", Password: "secret123", Role: "pilot"})
	assert.True(t, domain.IsValidation(err))

	_, err = svc.Signup(ctx, SignupInput{Email: "d@x.io", Password: "123"})
	assert.True(t, domain.IsValidation(err))
}

func TestLoginFailures(t *testing.T) {
	svc := newAuth()
	ctx := context.Background()
	_, err := svc.Signup(ctx, SignupInput{Email: "a@x.io", Password: "secret123"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, LoginInput{Email: "a@x.io", Password: "wrong-pass"})
	assert.True(t, domain.IsUnauthorized(err))
	_, _, err = svc.Login(ctx, LoginInput{Email: "nobody@x.io", Password: "secret123"})
	assert.True(t, domain.IsUnauthorized(err))
}

func TestParseTokenRejectsExpiredAndForeign(t *testing.T) {
	svc := newAuth()
	ctx := context.Background()
	require.NoError(t, svc.EnsureAdmin(ctx, "root@x.io", "rootpass"))
	require.NoError(t, svc.EnsureAdmin(ctx, "root@x.io", "rootpass"))

	token, u, err := svc.Login(ctx, LoginInput{Email: "root@x.io", Password: "rootpass"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)

	later := svc
	later.Now = func() time.Time { return fixedNow.Add(2 * time.Hour) }
	_, err = later.ParseToken(token)
	assert.True(t, domain.IsUnauthorized(err))

	foreign := svc
	foreign.Secret = []byte("other")
	_, err = foreign.ParseToken(token)
	assert.True(t, domain.IsUnauthorized(err))

	_, err = svc.ParseToken("not-a-jwt")
	assert.True(t, domain.IsUnauthorized(err))
}
