package dashboard

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"institute-service/internal/apiclient"
	"institute-service/internal/student"
)

func studentForm(inbox *Inbox) *Form[student.Request] {
	return NewForm(inbox, Required[student.Request]{
		Name:  "Name",
		Value: func(r student.Request) string { return r.Name },
	})
}

func TestForm_RequiredFieldBlocksSave(t *testing.T) {
	inbox := &Inbox{}
	f := studentForm(inbox)
	f.Edit(func(r *student.Request) { r.Name = "   " })

	called := false
	err := f.Submit(context.Background(), func(context.Context, student.Request) error {
		called = true
		return nil
	}, nil)

	assert.ErrorIs(t, err, ErrMissingField)
	assert.False(t, called)
	assert.Equal(t, "Name is required", inbox.Last().Message)
}

func TestForm_SuccessClearsDraftAndRefetches(t *testing.T) {
	f := studentForm(&Inbox{})
	f.Edit(func(r *student.Request) { r.Name = "Rahul"; r.Batch = "Morning" })

	var saved student.Request
	refetched := false
	err := f.Submit(context.Background(), func(_ context.Context, r student.Request) error {
		saved = r
		return nil
	}, func(context.Context) error {
		refetched = true
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "Rahul", saved.Name)
	assert.True(t, refetched)
	assert.Equal(t, student.Request{}, f.Draft())
	assert.False(t, f.Busy())
}

func TestForm_FailureKeepsDraft(t *testing.T) {
	inbox := &Inbox{}
	f := studentForm(inbox)
	f.Edit(func(r *student.Request) { r.Name = "Rahul" })

	err := f.Submit(context.Background(), func(context.Context, student.Request) error {
		return &apiclient.APIError{Status: http.StatusBadRequest, Message: "invalid request body"}
	}, func(context.Context) error {
		t.Fatal("refetch after failed save")
		return nil
	})

	assert.Error(t, err)
	assert.Equal(t, "Rahul", f.Draft().Name)
	assert.Equal(t, "invalid request body", inbox.Last().Message)

	_ = f.Submit(context.Background(), func(context.Context, student.Request) error {
		return errors.New("dial tcp: refused")
	}, nil)
	assert.Equal(t, "Failed to save", inbox.Last().Message)
}

func TestForm_SecondSubmitWhileBusy(t *testing.T) {
	f := studentForm(&Inbox{})
	f.Edit(func(r *student.Request) { r.Name = "Rahul" })

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- f.Submit(context.Background(), func(context.Context, student.Request) error {
			close(started)
			<-release
			return nil
		}, nil)
	}()

	<-started
	assert.True(t, f.Busy())
	assert.ErrorIs(t, f.Submit(context.Background(), func(context.Context, student.Request) error {
		t.Fatal("second save ran")
		return nil
	}, nil), ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, f.Busy())
}

func TestForm_BusyUntilRefetchReturns(t *testing.T) {
	f := studentForm(&Inbox{})
	f.Edit(func(r *student.Request) { r.Name = "Rahul" })

	saves := 0
	save := func(context.Context, student.Request) error {
		saves++
		return nil
	}

	var nestedErr error
	err := f.Submit(context.Background(), save, func(ctx context.Context) error {
		assert.True(t, f.Busy())
		f.Edit(func(r *student.Request) { r.Name = "Priya" })
		nestedErr = f.Submit(ctx, save, nil)
		return nil
	})

	require.NoError(t, err)
	assert.ErrorIs(t, nestedErr, ErrBusy)
	assert.Equal(t, 1, saves)
	assert.False(t, f.Busy())
}
