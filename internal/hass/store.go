// Package hass implements the state store on top of the Home Assistant REST API.
package hass

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cast"
)

var (
	ErrRequest  = errors.New("error making home assistant request")
	ErrStatus   = errors.New("error status from home assistant")
	ErrNotFound = errors.New("entity not found")
)

// State mirrors the state object returned by /api/states.
type State struct {
	EntityID    string                 `json:"entity_id"`
	State       string                 `json:"state"`
	Attributes  map[string]interface{} `json:"attributes"`
	LastChanged time.Time              `json:"last_changed"`
	LastUpdated time.Time              `json:"last_updated"`
}

type stateUpdate struct {
	State      string                 `json:"state"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// Store reads and writes entity states.
type Store struct {
	resty *resty.Client
}

// NewStore creates a store for the instance at baseURL, authenticating with
// a long-lived access token.
func NewStore(baseURL, token string, timeout time.Duration) *Store {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if token != "" {
		c.SetAuthToken(token)
	}
	return &Store{resty: c}
}

// SetState creates or replaces the state of entityID.
func (s *Store) SetState(ctx context.Context, entityID string, state interface{}, attrs map[string]interface{}) error {
	resp, err := s.resty.R().
		SetContext(ctx).
		SetPathParam("entity_id", entityID).
		SetBody(stateUpdate{State: FormatState(state), Attributes: attrs}).
		Post("/api/states/{entity_id}")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequest, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK, http.StatusCreated:
		return nil
	default:
		return fmt.Errorf("%w: set %s: got %d", ErrStatus, entityID, resp.StatusCode())
	}
}

// FormatState renders a state the way Home Assistant stores it. Floats keep
// at least one decimal, so 22.0 is sent as "22.0" rather than "22".
func FormatState(state interface{}) string {
	switch v := state.(type) {
	case float64:
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.ContainsAny(s, ".NI") {
			s += ".0"
		}
		return s
	case float32:
		return FormatState(float64(v))
	default:
		return cast.ToString(state)
	}
}

// DeleteState removes entityID from the state machine.
func (s *Store) DeleteState(ctx context.Context, entityID string) error {
	resp, err := s.resty.R().
		SetContext(ctx).
		SetPathParam("entity_id", entityID).
		Delete("/api/states/{entity_id}")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequest, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, entityID)
	default:
		return fmt.Errorf("%w: delete %s: got %d", ErrStatus, entityID, resp.StatusCode())
	}
}

// StateNames lists the ids of every entity known to the instance.
func (s *Store) StateNames(ctx context.Context) ([]string, error) {
	var states []State
	resp, err := s.resty.R().
		SetContext(ctx).
		SetResult(&states).
		Get("/api/states")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: list states: got %d", ErrStatus, resp.StatusCode())
	}

	names := make([]string, 0, len(states))
	for _, st := range states {
		names = append(names, st.EntityID)
	}
	return names, nil
}

// Attributes returns the attributes of entityID.
func (s *Store) Attributes(ctx context.Context, entityID string) (map[string]interface{}, error) {
	var st State
	resp, err := s.resty.R().
		SetContext(ctx).
		SetPathParam("entity_id", entityID).
		SetResult(&st).
		Get("/api/states/{entity_id}")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return st.Attributes, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, entityID)
	default:
		return nil, fmt.Errorf("%w: get %s: got %d", ErrStatus, entityID, resp.StatusCode())
	}
}

// Coordinates reads latitude and longitude attributes of a zone entity.
// Home Assistant reports them as numbers, but strings are tolerated.
func (s *Store) Coordinates(ctx context.Context, zone string) (lat, lon float64, err error) {
	attrs, err := s.Attributes(ctx, zone)
	if err != nil {
		return 0, 0, err
	}
	return ParseCoordinates(attrs)
}

// ParseCoordinates extracts latitude/longitude from an attribute map.
func ParseCoordinates(attrs map[string]interface{}) (lat, lon float64, err error) {
	rawLat, ok := attrs["latitude"]
	if !ok || rawLat == nil {
		return 0, 0, errors.New("missing latitude attribute")
	}
	rawLon, ok := attrs["longitude"]
	if !ok || rawLon == nil {
		return 0, 0, errors.New("missing longitude attribute")
	}

	if lat, err = cast.ToFloat64E(rawLat); err != nil {
		return 0, 0, fmt.Errorf("invalid latitude: %w", err)
	}
	if lon, err = cast.ToFloat64E(rawLon); err != nil {
		return 0, 0, fmt.Errorf("invalid longitude: %w", err)
	}
	return lat, lon, nil
}
