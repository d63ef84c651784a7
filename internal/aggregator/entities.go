package aggregator

import (
	"strconv"
	"time"

	"github.com/tejusbharadwaj/narodmon-avg/internal/models"
)

const (
	entityPrefix     = "sensor.narodmon_"
	responseEntityID = "sensor.narodmon_response"
)

// DefaultRemovalPrefixes are the entity id prefixes RemoveAll deletes.
var DefaultRemovalPrefixes = []string{
	"sensor.narodmon_",
	"sensor.test_",
	"input_text.narodmon_",
}

var typeSlugs = map[int]string{
	1:  "temperature",
	2:  "humidity",
	3:  "pressure",
	4:  "wind_speed",
	5:  "wind_direction",
	11: "illuminance",
	21: "dew_point",
	22: "dust",
	24: "water_temperature",
	25: "soil_temperature",
}

// Slug returns the English identifier for a type-id, type_<id> when unknown.
func Slug(typeID int) string {
	if slug, ok := typeSlugs[typeID]; ok {
		return slug
	}
	return "type_" + strconv.Itoa(typeID)
}

// EntityID is the state id an aggregate for typeID is published under.
func EntityID(typeID int) string {
	return entityPrefix + Slug(typeID)
}

// StateValue is the published state: the mean rounded to one decimal.
func StateValue(a models.Aggregate) float64 {
	return Round(a.Mean, 1)
}

// Attributes builds the attribute map published with an aggregate.
func Attributes(a models.Aggregate) map[string]interface{} {
	return map[string]interface{}{
		"avg":           Round(a.Mean, 2),
		"count":         a.Count,
		"devices":       a.Devices,
		"type_id":       a.TypeID,
		"type_name":     a.Type.Name,
		"unit":          a.Type.Unit,
		"icon":          a.Type.Icon,
		"last_update":   formatTimestamp(a.At),
		"friendly_name": "Narodmon " + a.Type.Name,
	}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000")
}
