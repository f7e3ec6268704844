package apiclient_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"institute-service/internal/apiclient"
	"institute-service/internal/auth"
	"institute-service/internal/blog"
	"institute-service/internal/student"
	"institute-service/testing/testapi"
)

func TestClient_AgainstAPI(t *testing.T) {
	env := testapi.New(t)
	srv := httptest.NewServer(env.Router)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	c := apiclient.NewClient(srv.URL)

	_, err := c.Register(ctx, auth.RegisterRequest{
		Email:         "client@example.com",
		Password:      "secret123",
		FullName:      "Client Owner",
		InstituteName: "Client Institute",
	})
	require.NoError(t, err)

	p, err := c.CurrentPrincipal(ctx)
	require.NoError(t, err)
	assert.Equal(t, "client@example.com", p.Email)

	fee := 5000.0
	created, err := c.Students().Create(ctx, student.Request{Name: "Rahul Sharma", Batch: "Morning", FeeAmount: &fee})
	require.NoError(t, err)
	assert.Regexp(t, `^STU-\d{4}$`, created.StudentID)

	rows, err := c.Students().List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	batches, err := c.Batches(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Morning"}, batches)

	_, err = c.Toppers().Create(ctx, blog.TopperRequest{Name: "Priya", Class: "10", Marks: "98%"})
	require.NoError(t, err)

	require.NoError(t, c.Students().Delete(ctx, created.ID))
	err = c.Students().Delete(ctx, created.ID)
	assert.ErrorIs(t, err, apiclient.ErrNotFound)

	require.NoError(t, c.Logout(ctx))
	_, err = c.CurrentPrincipal(ctx)
	assert.ErrorIs(t, err, apiclient.ErrUnauthorized)

	_, err = c.Login(ctx, "client@example.com", "wrong-password")
	assert.ErrorIs(t, err, apiclient.ErrUnauthorized)
	_, err = c.Login(ctx, "client@example.com", "secret123")
	require.NoError(t, err)
}
