package aggregator

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tejusbharadwaj/narodmon-avg/internal/models"
)

const unknownDevice = "Unknown"

// ParseValue converts a raw sensor value into a float. Numbers and numeric
// strings are accepted; anything else, including NaN and infinities, is not.
func ParseValue(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}

	var v float64
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		v = f
	case 't', 'f', 'n', '[', '{':
		return 0, false
	default:
		if err := json.Unmarshal(raw, &v); err != nil {
			return 0, false
		}
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseTypeID accepts a non-negative integral type-id given as a number or a
// numeric string.
func ParseTypeID(raw json.RawMessage) (int, bool) {
	v, ok := ParseValue(raw)
	if !ok || v < 0 || v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}

// DeviceName returns the station name, or "Unknown" when it is missing.
// Non-string names are kept in their JSON form.
func DeviceName(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return unknownDevice
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return string(raw)
	}
	return name
}

// ExtractReadings flattens devices into valid readings, dropping sensors
// without a usable type or with a value that is not a number.
func ExtractReadings(devices []models.Device) []models.Reading {
	var readings []models.Reading
	for _, d := range devices {
		name := DeviceName(d.Name)
		for _, s := range d.Sensors {
			typeID, ok := ParseTypeID(s.Type)
			if !ok {
				continue
			}
			value, ok := ParseValue(s.Value)
			if !ok {
				continue
			}
			readings = append(readings, models.Reading{
				TypeID: typeID,
				Value:  value,
				Device: name,
			})
		}
	}
	return readings
}

// Aggregate groups readings by type-id and averages them. Device counts are
// distinct device names per type. Results are ordered by type-id.
func Aggregate(readings []models.Reading, catalog models.Catalog, at time.Time) []models.Aggregate {
	type group struct {
		sum     float64
		count   int
		devices map[string]struct{}
	}

	groups := make(map[int]*group)
	for _, r := range readings {
		g, ok := groups[r.TypeID]
		if !ok {
			g = &group{devices: make(map[string]struct{})}
			groups[r.TypeID] = g
		}
		g.sum += r.Value
		g.count++
		g.devices[r.Device] = struct{}{}
	}

	aggregates := make([]models.Aggregate, 0, len(groups))
	for typeID, g := range groups {
		if g.count == 0 {
			continue
		}
		aggregates = append(aggregates, models.Aggregate{
			TypeID:  typeID,
			Mean:    g.sum / float64(g.count),
			Count:   g.count,
			Devices: len(g.devices),
			Type:    lookupType(catalog, typeID),
			At:      at,
		})
	}

	sort.Slice(aggregates, func(i, j int) bool {
		return aggregates[i].TypeID < aggregates[j].TypeID
	})
	return aggregates
}

// Round rounds v to the given number of decimal places, halves away from zero.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// TypeFilter builds the comma-joined, ascending list of type-ids.
func TypeFilter(catalog models.Catalog) string {
	ids := make([]int, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
