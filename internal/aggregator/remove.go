package aggregator

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/time/rate"
)

// RemoveAll deletes every state whose id starts with one of the removal
// prefixes, pausing between deletions. A failed deletion is logged and the
// loop moves on. It returns the number of states removed.
func (a *Aggregator) RemoveAll(ctx context.Context) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.logger.Info("Removing all Narodmon entities")

	names, err := a.store.StateNames(ctx)
	if err != nil {
		a.logger.WithError(err).Error("Failed to list states")
		return 0, fmt.Errorf("failed to list states: %w", err)
	}

	limiter := rate.NewLimiter(rate.Every(a.opts.RemovalPause), 1)
	removed := 0
	for _, entityID := range names {
		if !hasAnyPrefix(entityID, a.opts.RemovalPrefixes) {
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			a.logger.WithError(err).Warn("Removal interrupted")
			return removed, err
		}

		if err := a.store.DeleteState(ctx, entityID); err != nil {
			a.logger.WithError(err).WithField("entity_id", entityID).Error("Failed to remove entity")
			continue
		}

		removed++
		a.metrics.Removed.Inc()
		a.logger.WithField("entity_id", entityID).Info("Removed entity")
	}

	a.logger.WithField("removed", removed).Info("Removal completed")
	return removed, nil
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
