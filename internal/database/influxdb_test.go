package database

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type writeRecorder struct {
	mu     sync.Mutex
	bodies []string
	query  string
	status int
}

func (w *writeRecorder) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	w.mu.Lock()
	w.bodies = append(w.bodies, string(body))
	w.query = r.URL.RawQuery
	w.mu.Unlock()
	rw.WriteHeader(w.status)
}

func TestInfluxPublish(t *testing.T) {
	rec := &writeRecorder{status: http.StatusNoContent}
	mux := http.NewServeMux()
	mux.Handle("/api/v2/write", rec)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	repo, err := NewInfluxRepo(srv.URL, "token", "home", "narodmon")
	require.NoError(t, err)
	defer repo.Close()

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Publish(context.Background(), sampleAggregates(at)))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.bodies, 1)
	assert.Contains(t, rec.query, "bucket=narodmon")
	assert.Contains(t, rec.query, "org=home")
	assert.Contains(t, rec.bodies[0], "narodmon_aggregate,")
	assert.Contains(t, rec.bodies[0], "type_id=1")
	assert.Contains(t, rec.bodies[0], "mean=22")
	assert.Contains(t, rec.bodies[0], "samples=3i")
	assert.Equal(t, "influx", repo.Name())
}

func TestInfluxPublishError(t *testing.T) {
	rec := &writeRecorder{status: http.StatusUnauthorized}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	repo, err := NewInfluxRepo(srv.URL, "bad", "home", "narodmon")
	require.NoError(t, err)
	defer repo.Close()

	err = repo.Publish(context.Background(), sampleAggregates(time.Now()))
	assert.Error(t, err)
}

func TestInfluxPublishEmpty(t *testing.T) {
	rec := &writeRecorder{status: http.StatusNoContent}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	repo, err := NewInfluxRepo(srv.URL, "token", "home", "narodmon")
	require.NoError(t, err)
	defer repo.Close()

	require.NoError(t, repo.Publish(context.Background(), nil))
	assert.Empty(t, rec.bodies)
}

func TestNewInfluxRepoValidates(t *testing.T) {
	_, err := NewInfluxRepo("", "token", "home", "narodmon")
	assert.Error(t, err)
}
