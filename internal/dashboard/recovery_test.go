package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"institute-service/internal/recovery"
)

const ownerEmail = "owner@example.com"

func atCodeStep(t *testing.T) (*Recovery, *mockRecoveryAPI, *Inbox) {
	t.Helper()
	api := new(mockRecoveryAPI)
	inbox := &Inbox{}
	api.On("RequestRecoveryCode", mock.Anything, ownerEmail).Return(nil).Once()

	r := NewRecovery(api, inbox)
	require.NoError(t, r.SubmitEmail(context.Background(), ownerEmail))
	require.Equal(t, AwaitingCode, r.Step())
	return r, api, inbox
}

func TestRecovery_FullFlow(t *testing.T) {
	r, api, inbox := atCodeStep(t)
	api.On("VerifyRecoveryCode", mock.Anything, ownerEmail, "123456").
		Return(&recovery.VerifyResponse{RecoveryToken: "grant", ExpiresAt: time.Now().Add(time.Minute)}, nil).Once()
	api.On("ResetPassword", mock.Anything, "grant", "newpass1").Return(nil).Once()

	require.NoError(t, r.SubmitCode(context.Background(), "123456", "newpass1", "newpass1"))

	assert.Equal(t, Done, r.Step())
	assert.Equal(t, "Password reset successfully", inbox.Last().Message)
	api.AssertExpectations(t)
}

func TestRecovery_LocalChecksMakeNoCalls(t *testing.T) {
	r, api, inbox := atCodeStep(t)

	err := r.SubmitCode(context.Background(), "123456", "abc", "abd")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Equal(t, "Passwords do not match", inbox.Last().Message)

	err = r.SubmitCode(context.Background(), "123456", "abc", "abc")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
	assert.Equal(t, "Password must be at least 6 characters", inbox.Last().Message)

	assert.ErrorIs(t, r.SubmitCode(context.Background(), "", "abcdef", "abcdef"), ErrMissingField)

	assert.Equal(t, AwaitingCode, r.Step())
	api.AssertNotCalled(t, "VerifyRecoveryCode", mock.Anything, mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "ResetPassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecovery_BadCodeStaysOnStep(t *testing.T) {
	r, api, _ := atCodeStep(t)
	api.On("VerifyRecoveryCode", mock.Anything, ownerEmail, "000000").Return(nil, errors.New("invalid code")).Once()

	assert.Error(t, r.SubmitCode(context.Background(), "000000", "newpass1", "newpass1"))
	assert.Equal(t, AwaitingCode, r.Step())
	api.AssertNotCalled(t, "ResetPassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecovery_FailedResetRetriesWithSameGrant(t *testing.T) {
	r, api, _ := atCodeStep(t)
	api.On("VerifyRecoveryCode", mock.Anything, ownerEmail, "123456").
		Return(&recovery.VerifyResponse{RecoveryToken: "grant", ExpiresAt: time.Now().Add(time.Minute)}, nil).Once()
	api.On("ResetPassword", mock.Anything, "grant", "newpass1").Return(errors.New("unavailable")).Once()
	api.On("ResetPassword", mock.Anything, "grant", "newpass1").Return(nil).Once()

	assert.Error(t, r.SubmitCode(context.Background(), "123456", "newpass1", "newpass1"))
	assert.Equal(t, AwaitingCode, r.Step())

	require.NoError(t, r.SubmitCode(context.Background(), "123456", "newpass1", "newpass1"))
	assert.Equal(t, Done, r.Step())
	api.AssertNumberOfCalls(t, "VerifyRecoveryCode", 1)
}

func TestRecovery_UseDifferentEmail(t *testing.T) {
	r, api, _ := atCodeStep(t)

	r.UseDifferentEmail()
	assert.Equal(t, AwaitingEmail, r.Step())
	assert.Empty(t, r.Email())
	assert.ErrorIs(t, r.SubmitCode(context.Background(), "123456", "newpass1", "newpass1"), ErrWrongStep)

	api.On("RequestRecoveryCode", mock.Anything, "other@example.com").Return(nil).Once()
	require.NoError(t, r.SubmitEmail(context.Background(), "other@example.com"))
	assert.Equal(t, "other@example.com", r.Email())
}

func TestRecovery_EmailRequired(t *testing.T) {
	api := new(mockRecoveryAPI)
	r := NewRecovery(api, &Inbox{})

	assert.ErrorIs(t, r.SubmitEmail(context.Background(), " "), ErrMissingField)
	assert.Equal(t, AwaitingEmail, r.Step())
	api.AssertNotCalled(t, "RequestRecoveryCode", mock.Anything, mock.Anything)
}
