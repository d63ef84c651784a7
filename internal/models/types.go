package models

import (
	"encoding/json"
	"time"
)

// SensorType describes one Narodmon sensor category.
type SensorType struct {
	ID   int    `json:"-"`
	Name string `json:"name"`
	Unit string `json:"unit"`
	Icon string `json:"icon"`
}

// Catalog maps a type-id to its description.
type Catalog map[int]SensorType

// Reading is a single valid sensor value reported by a device.
type Reading struct {
	TypeID int
	Value  float64
	Device string
}

// Aggregate is the per-type result of one update cycle.
type Aggregate struct {
	TypeID  int
	Mean    float64
	Count   int
	Devices int
	Type    SensorType
	At      time.Time
}

// CatalogSource tells where the catalog used by a cycle came from.
type CatalogSource string

const (
	CatalogFromCache    CatalogSource = "cache"
	CatalogFromAPI      CatalogSource = "api"
	CatalogFromFallback CatalogSource = "fallback"
)

// CycleReport summarizes one update cycle.
type CycleReport struct {
	TypesRequested string
	Devices        int
	Published      int
	CatalogSource  CatalogSource
	Aggregates     []Aggregate
}

// NearbyResponse is the body of the sensorsNearby endpoint.
type NearbyResponse struct {
	Devices []Device `json:"devices"`
	Errno   int      `json:"errno,omitempty"`
	Error   string   `json:"error,omitempty"`

	// Raw holds the undecoded body as received.
	Raw json.RawMessage `json:"-"`
}

// Device is a station reporting one or more sensors. Only the fields the
// aggregator reads are decoded, and they stay raw so that one odd value
// drops a sensor instead of failing the whole response.
type Device struct {
	Name    json.RawMessage `json:"name"`
	Sensors []Sensor        `json:"sensors"`
}

// Sensor is one measurement channel of a device. The API reports type and
// value as numbers, numeric strings and occasionally garbage.
type Sensor struct {
	Type  json.RawMessage `json:"type"`
	Value json.RawMessage `json:"value"`
}

// AppInitResponse is the body of the appInit endpoint.
type AppInitResponse struct {
	Types []AppInitType `json:"types"`
	Errno int           `json:"errno,omitempty"`
	Error string        `json:"error,omitempty"`
}

// AppInitType is one catalog entry as returned by appInit.
type AppInitType struct {
	Type int    `json:"type"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

// TimeSeriesData represents a single bucketed history point
type TimeSeriesData struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}
