package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"institute-service/internal/apiclient"
	"institute-service/internal/auth"
)

func activeGuard(t *testing.T) (*Guard, *mockPrincipals) {
	t.Helper()
	source := new(mockPrincipals)
	source.On("CurrentPrincipal", mock.Anything).Return(&auth.Principal{
		UserID:    uuid.New(),
		Email:     "owner@example.com",
		SessionID: uuid.New(),
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil).Once()

	g := NewGuard(source)
	_, err := g.Activate(context.Background())
	require.NoError(t, err)
	return g, source
}

func TestGuard_ActivateWithoutSession(t *testing.T) {
	source := new(mockPrincipals)
	source.On("CurrentPrincipal", mock.Anything).Return(nil, apiclient.ErrUnauthorized)

	g := NewGuard(source)
	p, err := g.Activate(context.Background())

	assert.ErrorIs(t, err, ErrNoSession)
	assert.Nil(t, p)
	assert.Nil(t, g.Principal())
}

func TestGuard_ActivatePassesOtherErrors(t *testing.T) {
	source := new(mockPrincipals)
	boom := errors.New("connection refused")
	source.On("CurrentPrincipal", mock.Anything).Return(nil, boom)

	_, err := NewGuard(source).Activate(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestGuard_SubscribersRunInOrderOnce(t *testing.T) {
	g, _ := activeGuard(t)

	var calls []string
	g.Subscribe(func(reason string) { calls = append(calls, "first:"+reason) })
	unsubscribe := g.Subscribe(func(reason string) { calls = append(calls, "second:"+reason) })
	g.Subscribe(func(reason string) { calls = append(calls, "third:"+reason) })
	unsubscribe()

	g.Terminate(ReasonSignedOut)
	g.Terminate(ReasonSignedOut)

	assert.Equal(t, []string{"first:signed_out", "third:signed_out"}, calls)
	assert.Nil(t, g.Principal())
}

func TestGuard_ExpiryEndsSession(t *testing.T) {
	g, _ := activeGuard(t)
	var reason string
	g.Subscribe(func(r string) { reason = r })

	g.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	assert.Nil(t, g.Principal())
	assert.Equal(t, ReasonExpired, reason)
}

func TestGuard_ObserveUnauthorized(t *testing.T) {
	g, _ := activeGuard(t)
	var ended bool
	g.Subscribe(func(string) { ended = true })

	other := errors.New("timeout")
	assert.Equal(t, other, g.Observe(other))
	assert.False(t, ended)

	err := g.Observe(&apiclient.APIError{Status: 401, Message: "invalid token"})
	assert.ErrorIs(t, err, ErrNoSession)
	assert.True(t, ended)
}
