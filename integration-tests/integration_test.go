//go:build integration
// +build integration

package integration_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/tejusbharadwaj/narodmon-avg/internal/aggregator"
	"github.com/tejusbharadwaj/narodmon-avg/internal/database"
	server "github.com/tejusbharadwaj/narodmon-avg/internal/grpc"
	"github.com/tejusbharadwaj/narodmon-avg/internal/hass"
	"github.com/tejusbharadwaj/narodmon-avg/internal/narodmon"
)

const bufSize = 1024 * 1024

// fakeHomeAssistant keeps states in memory behind the REST endpoints the
// store uses.
type fakeHomeAssistant struct {
	mu     sync.Mutex
	states map[string]hass.State
}

func newFakeHomeAssistant() *fakeHomeAssistant {
	return &fakeHomeAssistant{states: map[string]hass.State{
		"zone.home": {
			EntityID:   "zone.home",
			State:      "zoning",
			Attributes: map[string]interface{}{"latitude": 55.75, "longitude": 37.62},
		},
		"sensor.kitchen_temperature": {EntityID: "sensor.kitchen_temperature", State: "21"},
	}}
}

func (f *fakeHomeAssistant) handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/api/states", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		list := make([]hass.State, 0, len(f.states))
		for _, st := range f.states {
			list = append(list, st)
		}
		json.NewEncoder(w).Encode(list)
	}).Methods(http.MethodGet)

	router.HandleFunc("/api/states/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		st, ok := f.states[mux.Vars(r)["id"]]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(st)
	}).Methods(http.MethodGet)

	router.HandleFunc("/api/states/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			State      interface{}            `json:"state"`
			Attributes map[string]interface{} `json:"attributes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		id := mux.Vars(r)["id"]

		f.mu.Lock()
		_, existed := f.states[id]
		f.states[id] = hass.State{EntityID: id, State: fmt.Sprint(body.State), Attributes: body.Attributes}
		f.mu.Unlock()

		if existed {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusCreated)
		}
	}).Methods(http.MethodPost)

	router.HandleFunc("/api/states/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		id := mux.Vars(r)["id"]
		if _, ok := f.states[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		delete(f.states, id)
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodDelete)

	return router
}

func (f *fakeHomeAssistant) get(id string) (hass.State, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.states[id]
	return st, ok
}

func (f *fakeHomeAssistant) ids() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.states))
	for id := range f.states {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type fakeNarodmon struct {
	mu           sync.Mutex
	appInitCalls int
	lastTypes    string
}

func (f *fakeNarodmon) handler() http.Handler {
	m := http.NewServeMux()
	m.HandleFunc("/appInit", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.appInitCalls++
		f.mu.Unlock()
		fmt.Fprint(w, `{"types":[
			{"type":1,"name":"Температура","unit":"°C"},
			{"type":2,"name":"Влажность","unit":"%"}
		]}`)
	})
	m.HandleFunc("/sensorsNearby", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.lastTypes = r.URL.Query().Get("types")
		f.mu.Unlock()
		fmt.Fprint(w, `{"devices":[
			{"id":1,"name":"A","sensors":[{"type":1,"value":20.0},{"type":2,"value":"50"}]},
			{"id":2,"name":"B","sensors":[{"type":1,"value":22.0}]},
			{"id":3,"name":"C","sensors":[{"type":1,"value":"24"},{"type":2,"value":"n/a"}]}
		]}`)
	})
	return m
}

type environment struct {
	client   *server.Client
	ha       *fakeHomeAssistant
	narodmon *fakeNarodmon
}

func setupEnvironment(t *testing.T, sinks ...aggregator.Sink) *environment {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	ha := newFakeHomeAssistant()
	haServer := httptest.NewServer(ha.handler())
	t.Cleanup(haServer.Close)

	nm := &fakeNarodmon{}
	nmServer := httptest.NewServer(nm.handler())
	t.Cleanup(nmServer.Close)

	api := narodmon.NewClient(narodmon.Options{
		URL:    nmServer.URL,
		APIKey: "integration-key-0001",
		UUID:   "0123456789abcdef",
		Lang:   "ru",
	})
	store := hass.NewStore(haServer.URL, "token", 5*time.Second)

	registry := prometheus.NewRegistry()
	agg, err := aggregator.New(api, store, aggregator.Options{
		APIKey:     "integration-key-0001",
		UUID:       "0123456789abcdef",
		Lang:       "ru",
		CatalogTTL: time.Hour,
	}, logger, aggregator.NewMetrics(registry), sinks...)
	require.NoError(t, err)

	var history server.HistoryReader
	for _, s := range sinks {
		if h, ok := s.(server.HistoryReader); ok {
			history = h
		}
	}

	srv, _ := server.SetupServer(agg, history, server.DefaultServerConfig(), registry, logger)
	lis := bufconn.Listen(bufSize)
	go func() {
		if err := srv.Serve(lis); err != nil {
			logger.Errorf("Error serving: %v", err)
		}
	}()
	t.Cleanup(func() {
		srv.Stop()
		lis.Close()
	})

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &environment{client: server.NewClient(conn), ha: ha, narodmon: nm}
}

func TestUpdateRemoveE2E(t *testing.T) {
	env := setupEnvironment(t)
	ctx := context.Background()

	report, err := env.client.Update(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "api", report.AsMap()["catalog_source"])
	assert.Equal(t, "1,2", env.narodmon.lastTypes)

	temperature, ok := env.ha.get("sensor.narodmon_temperature")
	require.True(t, ok)
	assert.Equal(t, "22.0", temperature.State)
	assert.Equal(t, float64(3), temperature.Attributes["count"])
	assert.Equal(t, "°C", temperature.Attributes["unit"])

	humidity, ok := env.ha.get("sensor.narodmon_humidity")
	require.True(t, ok)
	assert.Equal(t, "50.0", humidity.State)
	assert.Equal(t, float64(1), humidity.Attributes["devices"])

	types, ok := env.ha.get("sensor.narodmon_types")
	require.True(t, ok)
	assert.Equal(t, "2", types.State)

	_, ok = env.ha.get("sensor.narodmon_response")
	assert.True(t, ok)

	// second cycle is served from the catalog cache
	report, err = env.client.UpdateSingle(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "cache", report.AsMap()["catalog_source"])
	assert.Equal(t, "2", env.narodmon.lastTypes)
	assert.Equal(t, 1, env.narodmon.appInitCalls)

	removed, err := env.client.RemoveAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), removed)
	assert.Equal(t, []string{"sensor.kitchen_temperature", "zone.home"}, env.ha.ids())
}

func TestUpdateRejectsInvalidType(t *testing.T) {
	env := setupEnvironment(t)

	_, err := env.client.UpdateSingle(context.Background(), -3)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid type id"))
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// TestHistoryE2E needs a reachable PostgreSQL with TimescaleDB; it is
// skipped unless DB_HOST is set.
func TestHistoryE2E(t *testing.T) {
	if os.Getenv("DB_HOST") == "" {
		t.Skip("DB_HOST not set")
	}

	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnvOrDefault("DB_HOST", "db"),
		getEnvOrDefault("DB_PORT", "5432"),
		getEnvOrDefault("DB_USER", "narodmon"),
		getEnvOrDefault("DB_PASSWORD", "narodmon"),
		getEnvOrDefault("DB_NAME", "narodmon"),
	)

	ctx := context.Background()
	repo, err := database.NewPostgresRepo(ctx, connStr, 4)
	require.NoError(t, err)
	defer repo.Close()

	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec("TRUNCATE TABLE narodmon_aggregates")
	require.NoError(t, err)

	env := setupEnvironment(t, repo)
	_, err = env.client.Update(ctx, 0)
	require.NoError(t, err)

	now := time.Now()
	resp, err := env.client.History(ctx, 1, now.Add(-time.Hour), now.Add(time.Hour), "1h", "AVG")
	require.NoError(t, err)

	points := resp.AsMap()["points"].([]interface{})
	require.NotEmpty(t, points)
	assert.Equal(t, 22.0, points[0].(map[string]interface{})["value"])
}
