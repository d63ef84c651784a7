package aggregator

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/tejusbharadwaj/narodmon-avg/internal/models"
)

const (
	DefaultCatalogTTL = 24 * time.Hour

	typesEntityID = "sensor.narodmon_types"
	defaultIcon   = "mdi:sensor"
)

var typeIcons = map[int]string{
	1:  "mdi:thermometer",
	2:  "mdi:water-percent",
	3:  "mdi:gauge",
	4:  "mdi:weather-windy",
	5:  "mdi:compass",
	9:  "mdi:weather-rainy",
	11: "mdi:brightness-6",
	21: "mdi:thermometer-water",
	22: "mdi:smoke",
	24: "mdi:waves",
	25: "mdi:leaf",
}

// IconForType returns the Material Design icon for a type-id.
func IconForType(typeID int) string {
	if icon, ok := typeIcons[typeID]; ok {
		return icon
	}
	return defaultIcon
}

// DefaultCatalog is used whenever the catalog cannot be loaded from the API.
// A fresh map is returned on every call.
func DefaultCatalog() models.Catalog {
	entries := []models.SensorType{
		{ID: 1, Name: "Температура", Unit: "°C"},
		{ID: 2, Name: "Влажность", Unit: "%"},
		{ID: 3, Name: "Давление", Unit: "mmHg"},
		{ID: 4, Name: "Скорость ветра", Unit: "m/s"},
		{ID: 5, Name: "Направление ветра", Unit: "°"},
		{ID: 11, Name: "Освещенность", Unit: "Lx"},
		{ID: 21, Name: "Точка росы", Unit: "°C"},
		{ID: 22, Name: "Запыленность", Unit: "µg/m³"},
		{ID: 24, Name: "Температура воды", Unit: "°C"},
		{ID: 25, Name: "Температура почвы", Unit: "°C"},
	}

	catalog := make(models.Catalog, len(entries))
	for _, e := range entries {
		e.Icon = IconForType(e.ID)
		catalog[e.ID] = e
	}
	return catalog
}

// CatalogFromAppInit converts an appInit response into a catalog.
func CatalogFromAppInit(resp *models.AppInitResponse) models.Catalog {
	catalog := make(models.Catalog, len(resp.Types))
	for _, t := range resp.Types {
		catalog[t.Type] = models.SensorType{
			ID:   t.Type,
			Name: t.Name,
			Unit: t.Unit,
			Icon: IconForType(t.Type),
		}
	}
	return catalog
}

// lookupType returns the catalog entry for typeID or a generic placeholder.
func lookupType(catalog models.Catalog, typeID int) models.SensorType {
	if st, ok := catalog[typeID]; ok {
		return st
	}
	return models.SensorType{
		ID:   typeID,
		Name: "Type " + strconv.Itoa(typeID),
		Unit: "",
		Icon: defaultIcon,
	}
}

type catalogEntry struct {
	catalog  models.Catalog
	loadedAt time.Time
}

// CatalogCache keeps loaded catalogs per language for a fixed TTL.
type CatalogCache struct {
	entries *lru.Cache
	ttl     time.Duration
	now     func() time.Time
}

func NewCatalogCache(size int, ttl time.Duration) (*CatalogCache, error) {
	entries, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &CatalogCache{entries: entries, ttl: ttl, now: time.Now}, nil
}

// Get returns a non-empty catalog loaded less than ttl ago.
func (c *CatalogCache) Get(lang string) (models.Catalog, bool) {
	v, ok := c.entries.Get(lang)
	if !ok {
		return nil, false
	}
	entry := v.(catalogEntry)
	if len(entry.catalog) == 0 || c.now().Sub(entry.loadedAt) >= c.ttl {
		return nil, false
	}
	return entry.catalog, true
}

func (c *CatalogCache) Put(lang string, catalog models.Catalog) {
	c.entries.Add(lang, catalogEntry{catalog: catalog, loadedAt: c.now()})
}

// resolveTypeCatalog returns the cached catalog when fresh, otherwise loads
// it from the API. Any load failure yields the default catalog, which is
// not cached so the next cycle tries again.
func (a *Aggregator) resolveTypeCatalog(ctx context.Context) (models.Catalog, models.CatalogSource) {
	if catalog, ok := a.catalog.Get(a.opts.Lang); ok {
		a.metrics.CatalogLoads.WithLabelValues(string(models.CatalogFromCache)).Inc()
		return catalog, models.CatalogFromCache
	}

	resp, err := a.api.AppInit(ctx)
	if err != nil {
		a.logger.WithError(err).Warn("Failed to load sensor types, using defaults")
		a.metrics.CatalogLoads.WithLabelValues(string(models.CatalogFromFallback)).Inc()
		return DefaultCatalog(), models.CatalogFromFallback
	}

	catalog := CatalogFromAppInit(resp)
	if len(catalog) == 0 {
		a.logger.Warn("API returned no sensor types, using defaults")
		a.metrics.CatalogLoads.WithLabelValues(string(models.CatalogFromFallback)).Inc()
		return DefaultCatalog(), models.CatalogFromFallback
	}

	a.catalog.Put(a.opts.Lang, catalog)
	a.metrics.CatalogLoads.WithLabelValues(string(models.CatalogFromAPI)).Inc()
	a.logger.WithField("types", len(catalog)).Info("Loaded sensor types from API")

	a.publishCatalog(ctx, catalog)
	return catalog, models.CatalogFromAPI
}

func (a *Aggregator) publishCatalog(ctx context.Context, catalog models.Catalog) {
	encoded, err := json.Marshal(catalog)
	if err != nil {
		a.logger.WithError(err).Error("Failed to encode sensor types")
		return
	}

	attrs := map[string]interface{}{
		"types":         string(encoded),
		"count":         len(catalog),
		"last_update":   formatTimestamp(a.now()),
		"friendly_name": "Narodmon Sensor Types",
	}
	if err := a.store.SetState(ctx, typesEntityID, len(catalog), attrs); err != nil {
		a.logger.WithError(err).WithField("entity_id", typesEntityID).Error("Failed to publish sensor types")
	}
}
