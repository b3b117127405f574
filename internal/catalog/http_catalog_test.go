package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/course-enrollment-service/internal/domain"
)

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users/user-1", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /api/courses/course-1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"courseId": "course-1",
			"title":    "Intro to Go",
			"status":   "PUBLISHED",
		})
	})
	mux.HandleFunc("GET /api/courses/course-broken", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestHTTPCatalog_UserExists(t *testing.T) {
	t.Parallel()

	server := newCatalogServer(t)
	client := NewHTTPCatalog(server.URL, 2*time.Second)

	exists, err := client.UserExists(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = client.UserExists(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestHTTPCatalog_GetCourse(t *testing.T) {
	t.Parallel()

	server := newCatalogServer(t)
	client := NewHTTPCatalog(server.URL, 2*time.Second)

	course, err := client.GetCourse(context.Background(), "course-1")
	require.NoError(t, err)
	require.NotNil(t, course)
	assert.Equal(t, "course-1", course.ID)
	assert.Equal(t, domain.CourseStatusPublished, course.Status)

	course, err = client.GetCourse(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, course)
}

func TestHTTPCatalog_ServerErrorIsNotAbsence(t *testing.T) {
	t.Parallel()

	server := newCatalogServer(t)
	client := NewHTTPCatalog(server.URL, 2*time.Second)

	_, err := client.GetCourse(context.Background(), "course-broken")
	assert.Error(t, err)
}

func TestHTTPCatalog_UnreachableServer(t *testing.T) {
	t.Parallel()

	client := NewHTTPCatalog("http://127.0.0.1:1", time.Second)

	_, err := client.UserExists(context.Background(), "user-1")
	assert.Error(t, err)

	_, err = client.GetCourse(context.Background(), "course-1")
	assert.Error(t, err)
}
