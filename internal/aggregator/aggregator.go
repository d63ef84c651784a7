// Package aggregator implements the fetch-aggregate-publish cycle.
//
// One cycle resolves the sensor-type catalog (cached for a day), requests
// readings for every wanted type from Narodmon in a single call, averages
// them per type and writes one state per type plus a summary state into the
// home-automation state store. Cycles are serialized.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tejusbharadwaj/narodmon-avg/internal/models"
	"github.com/tejusbharadwaj/narodmon-avg/internal/narodmon"
)

var (
	ErrMissingAPIKey = errors.New("no narodmon api key configured")
	ErrCoordinates   = errors.New("failed to get coordinates")
	ErrInvalidType   = errors.New("invalid sensor type")
)

// DefaultRemovalPause is the gap between two deletions in RemoveAll.
const DefaultRemovalPause = 100 * time.Millisecond

// Options configures an Aggregator.
type Options struct {
	APIKey string
	UUID   string
	Lang   string

	// Zone is the entity whose latitude/longitude attributes locate the
	// search. Ignored when Latitude or Longitude is set.
	Zone      string
	Latitude  float64
	Longitude float64

	CatalogTTL       time.Duration
	CatalogCacheSize int

	RemovalPrefixes []string
	RemovalPause    time.Duration
}

// Aggregator runs update and removal cycles.
type Aggregator struct {
	mu sync.Mutex

	api     SensorAPI
	store   StateStore
	sinks   []Sink
	catalog *CatalogCache
	metrics *Metrics
	logger  *logrus.Logger
	opts    Options
	now     func() time.Time
}

// New creates an Aggregator. metrics may be nil.
func New(api SensorAPI, store StateStore, opts Options, logger *logrus.Logger, metrics *Metrics, sinks ...Sink) (*Aggregator, error) {
	if opts.Zone == "" {
		opts.Zone = "zone.home"
	}
	if opts.Lang == "" {
		opts.Lang = "ru"
	}
	if opts.CatalogCacheSize <= 0 {
		opts.CatalogCacheSize = 4
	}
	if opts.RemovalPrefixes == nil {
		opts.RemovalPrefixes = DefaultRemovalPrefixes
	}
	if opts.RemovalPause <= 0 {
		opts.RemovalPause = DefaultRemovalPause
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	cache, err := NewCatalogCache(opts.CatalogCacheSize, opts.CatalogTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog cache: %w", err)
	}

	return &Aggregator{
		api:     api,
		store:   store,
		sinks:   sinks,
		catalog: cache,
		metrics: metrics,
		logger:  logger,
		opts:    opts,
		now:     time.Now,
	}, nil
}

// UpdateAll runs one cycle. With typeID 0 every catalog type is requested in
// a single call, otherwise only typeID. Failures are logged and returned.
func (a *Aggregator) UpdateAll(ctx context.Context, typeID int) (*models.CycleReport, error) {
	if typeID < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidType, typeID)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	start := a.now()
	a.logger.WithField("type_id", typeID).Info("Narodmon update started")

	report, err := a.update(ctx, typeID)
	if err != nil {
		a.metrics.Cycles.WithLabelValues("error").Inc()
		a.logger.WithError(err).Error("Narodmon update failed")
		return nil, err
	}

	a.metrics.Cycles.WithLabelValues("success").Inc()
	a.logger.WithFields(logrus.Fields{
		"devices":   report.Devices,
		"published": report.Published,
		"catalog":   report.CatalogSource,
		"duration":  a.now().Sub(start).String(),
	}).Info("Narodmon update completed")

	return report, nil
}

// UpdateSingle runs a cycle restricted to one type-id.
func (a *Aggregator) UpdateSingle(ctx context.Context, typeID int) (*models.CycleReport, error) {
	if typeID <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidType, typeID)
	}
	return a.UpdateAll(ctx, typeID)
}

func (a *Aggregator) update(ctx context.Context, typeID int) (*models.CycleReport, error) {
	if a.opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	lat, lon, err := a.coordinates(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCoordinates, err)
	}

	a.logger.WithFields(logrus.Fields{
		"latitude":  lat,
		"longitude": lon,
		"api_key":   narodmon.MaskKey(a.opts.APIKey),
		"uuid":      uuidPrefix(a.opts.UUID),
	}).Info("Narodmon request context")

	catalog, source := a.resolveTypeCatalog(ctx)

	var types string
	if typeID > 0 {
		types = strconv.Itoa(typeID)
		a.logger.WithField("type_id", typeID).Info("Updating single type")
	} else {
		types = TypeFilter(catalog)
		a.logger.WithField("types", len(catalog)).Info("Updating all types in one request")
	}

	resp, err := a.api.SensorsNearby(ctx, lat, lon, types)
	if err != nil {
		return nil, err
	}

	now := a.now()
	a.logger.WithField("devices", len(resp.Devices)).Info("Received nearby devices")
	a.publishResponse(ctx, resp, types, lat, lon, now)

	aggregates := Aggregate(ExtractReadings(resp.Devices), catalog, now)
	published := a.publish(ctx, aggregates)

	for _, sink := range a.sinks {
		if err := sink.Publish(ctx, aggregates); err != nil {
			a.logger.WithError(err).WithField("sink", sink.Name()).Warn("Sink publish failed")
		}
	}

	return &models.CycleReport{
		TypesRequested: types,
		Devices:        len(resp.Devices),
		Published:      published,
		CatalogSource:  source,
		Aggregates:     aggregates,
	}, nil
}

func (a *Aggregator) coordinates(ctx context.Context) (float64, float64, error) {
	if a.opts.Latitude != 0 || a.opts.Longitude != 0 {
		return a.opts.Latitude, a.opts.Longitude, nil
	}
	return a.store.Coordinates(ctx, a.opts.Zone)
}

// publish writes one state per aggregate and returns how many succeeded.
func (a *Aggregator) publish(ctx context.Context, aggregates []models.Aggregate) int {
	published := 0
	for _, agg := range aggregates {
		entityID := EntityID(agg.TypeID)
		fields := logrus.Fields{
			"entity_id": entityID,
			"type_id":   agg.TypeID,
		}

		if err := a.store.SetState(ctx, entityID, StateValue(agg), Attributes(agg)); err != nil {
			a.logger.WithError(err).WithFields(fields).Error("Failed to publish aggregate")
			continue
		}

		published++
		a.metrics.observe(agg)
		a.logger.WithFields(fields).WithFields(logrus.Fields{
			"type_name": agg.Type.Name,
			"value":     strconv.FormatFloat(Round(agg.Mean, 1), 'f', 1, 64) + agg.Type.Unit,
			"sensors":   agg.Count,
			"devices":   agg.Devices,
		}).Info("Published aggregate")
	}
	return published
}

// publishResponse stores the raw API response as a summary state.
func (a *Aggregator) publishResponse(ctx context.Context, resp *models.NearbyResponse, types string, lat, lon float64, at time.Time) {
	attrs := map[string]interface{}{
		"raw_response":    string(resp.Raw),
		"devices_count":   len(resp.Devices),
		"types_requested": types,
		"latitude":        lat,
		"longitude":       lon,
		"last_update":     formatTimestamp(at),
	}
	if err := a.store.SetState(ctx, responseEntityID, len(resp.Devices), attrs); err != nil {
		a.logger.WithError(err).WithField("entity_id", responseEntityID).Error("Failed to publish raw response")
	}
}

func uuidPrefix(uuid string) string {
	if uuid == "" {
		return "not set"
	}
	if len(uuid) > 8 {
		return uuid[:8]
	}
	return uuid
}
