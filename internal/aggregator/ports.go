//go:generate go run github.com/golang/mock/mockgen -destination=./mocks/ports.go -package=mocks . SensorAPI,StateStore,Sink

package aggregator

import (
	"context"

	"github.com/tejusbharadwaj/narodmon-avg/internal/models"
)

// SensorAPI is the part of the Narodmon API the aggregator consumes.
type SensorAPI interface {
	AppInit(ctx context.Context) (*models.AppInitResponse, error)
	SensorsNearby(ctx context.Context, lat, lon float64, typeIDs string) (*models.NearbyResponse, error)
}

// StateStore is the home-automation state machine aggregates are written to.
type StateStore interface {
	SetState(ctx context.Context, entityID string, state interface{}, attrs map[string]interface{}) error
	DeleteState(ctx context.Context, entityID string) error
	StateNames(ctx context.Context) ([]string, error)
	Coordinates(ctx context.Context, zone string) (lat, lon float64, err error)
}

// Sink receives every published batch of aggregates in addition to the
// state store. Sink failures never fail a cycle.
type Sink interface {
	Name() string
	Publish(ctx context.Context, aggregates []models.Aggregate) error
}
