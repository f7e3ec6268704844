package announcement_test

import (
	"fmt"
	"net/http"
	"testing"

	"institute-service/internal/announcement"
	"institute-service/testing/testapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publish(t *testing.T, env *testapi.Env, token string, req announcement.Request) *announcement.Announcement {
	t.Helper()
	w := env.Do(t, http.MethodPost, "/api/announcements", token, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var a announcement.Announcement
	testapi.Decode(t, w, &a)
	return &a
}

func list(t *testing.T, env *testapi.Env, token, path string) []announcement.Announcement {
	t.Helper()
	w := env.Do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rows []announcement.Announcement
	testapi.Decode(t, w, &rows)
	return rows
}

func TestAnnouncementIntegration(t *testing.T) {
	t.Run("CreateDefaultsMediaType", func(t *testing.T) {
		env := testapi.New(t)
		owner := env.Register(t, "news@example.com")

		a := publish(t, env, owner.AccessToken, announcement.Request{Title: "Holiday", Content: "Closed on Friday", Batch: "Morning"})
		assert.Equal(t, announcement.MediaNone, a.MediaType)

		w := env.Do(t, http.MethodPost, "/api/announcements", owner.AccessToken, announcement.Request{Title: "Bad", Content: "x", MediaType: "audio"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = env.Do(t, http.MethodPost, "/api/announcements", owner.AccessToken, announcement.Request{Content: "no title"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("LatestAndFeedLimits", func(t *testing.T) {
		env := testapi.New(t)
		owner := env.Register(t, "limits@example.com")
		for i := range 12 {
			publish(t, env, owner.AccessToken, announcement.Request{Title: fmt.Sprintf("Notice %d", i), Content: "body"})
		}

		all := list(t, env, owner.AccessToken, "/api/announcements")
		assert.Len(t, all, 12)
		assert.Equal(t, "Notice 11", all[0].Title)

		latest := list(t, env, owner.AccessToken, "/api/announcements/latest")
		require.Len(t, latest, 3)
		assert.Equal(t, "Notice 11", latest[0].Title)

		assert.Len(t, list(t, env, owner.AccessToken, "/api/announcements/feed"), 10)
	})

	t.Run("FeedIsOwnerScopedByDefault", func(t *testing.T) {
		env := testapi.New(t)
		a := env.Register(t, "a@example.com")
		b := env.Register(t, "b@example.com")
		publish(t, env, a.AccessToken, announcement.Request{Title: "Only A", Content: "body"})

		assert.Empty(t, list(t, env, b.AccessToken, "/api/announcements/feed"))
	})

	t.Run("FeedAcrossOwners", func(t *testing.T) {
		env := testapi.New(t, testapi.Options{FeedScope: announcement.ScopeAll})
		a := env.Register(t, "a@example.com")
		b := env.Register(t, "b@example.com")
		publish(t, env, a.AccessToken, announcement.Request{Title: "From A", Content: "body"})

		feed := list(t, env, b.AccessToken, "/api/announcements/feed")
		require.Len(t, feed, 1)
		assert.Equal(t, "From A", feed[0].Title)
		assert.Empty(t, list(t, env, b.AccessToken, "/api/announcements"))
	})

	t.Run("Delete", func(t *testing.T) {
		env := testapi.New(t)
		a := env.Register(t, "a@example.com")
		b := env.Register(t, "b@example.com")
		created := publish(t, env, a.AccessToken, announcement.Request{Title: "Exam", Content: "Monday"})

		w := env.Do(t, http.MethodDelete, "/api/announcements/"+created.ID.String(), b.AccessToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = env.Do(t, http.MethodDelete, "/api/announcements/"+created.ID.String(), a.AccessToken, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, list(t, env, a.AccessToken, "/api/announcements"))
	})
}
