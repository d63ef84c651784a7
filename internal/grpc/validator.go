package server

import (
	"fmt"
	"time"
)

const maxTimeRange = 2 * 365 * 24 * time.Hour

// RequestValidator checks type-ids and history query parameters.
type RequestValidator struct {
	validWindows      map[string]bool
	validAggregations map[string]bool
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{
		validWindows: map[string]bool{
			"1m": true,
			"5m": true,
			"1h": true,
			"1d": true,
		},
		validAggregations: map[string]bool{
			"MIN": true,
			"MAX": true,
			"AVG": true,
			"SUM": true,
		},
	}
}

// ValidateTypeID accepts positive ids, and zero when allowAll is set.
func (v *RequestValidator) ValidateTypeID(typeID int64, allowAll bool) error {
	if typeID == 0 && allowAll {
		return nil
	}
	if typeID <= 0 {
		return fmt.Errorf("invalid type id: %d", typeID)
	}
	if typeID > int64(^uint32(0)>>1) {
		return fmt.Errorf("type id out of range: %d", typeID)
	}
	return nil
}

// Validate checks history query parameters.
func (v *RequestValidator) Validate(start, end time.Time, window, aggregation string) error {
	// Validate timestamps are present
	if start.IsZero() || end.IsZero() || start.Equal(time.Unix(0, 0)) || end.Equal(time.Unix(0, 0)) {
		return fmt.Errorf("missing timestamp")
	}

	if start.After(end) {
		return fmt.Errorf("start time must be before end time")
	}
	if end.Sub(start) > maxTimeRange {
		return fmt.Errorf("time range exceeds maximum allowed")
	}

	if !v.validWindows[window] {
		return fmt.Errorf("invalid window: %s", window)
	}
	if !v.validAggregations[aggregation] {
		return fmt.Errorf("invalid aggregation: %s", aggregation)
	}

	return nil
}
