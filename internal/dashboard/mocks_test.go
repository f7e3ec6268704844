package dashboard

import (
	"context"

	"github.com/stretchr/testify/mock"

	"institute-service/internal/auth"
	"institute-service/internal/recovery"
)

type mockPrincipals struct {
	mock.Mock
}

func (m *mockPrincipals) CurrentPrincipal(ctx context.Context) (*auth.Principal, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).(*auth.Principal)
	return p, args.Error(1)
}

type mockRecoveryAPI struct {
	mock.Mock
}

func (m *mockRecoveryAPI) RequestRecoveryCode(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockRecoveryAPI) VerifyRecoveryCode(ctx context.Context, email, code string) (*recovery.VerifyResponse, error) {
	args := m.Called(ctx, email, code)
	v, _ := args.Get(0).(*recovery.VerifyResponse)
	return v, args.Error(1)
}

func (m *mockRecoveryAPI) ResetPassword(ctx context.Context, token, password string) error {
	return m.Called(ctx, token, password).Error(0)
}
