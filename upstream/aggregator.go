package upstream

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"satwatch/metrics"
	"satwatch/projection"
)

// FetchResult pairs normalized stats with their provenance.
type FetchResult struct {
	Stats     *projection.RawChainStats
	Source    string
	FetchedAt time.Time
}

// Aggregator queries chain-stat sources in priority order and returns the
// first successful result. Per-source failures are logged and counted, not
// fatal, so a single flaky provider never takes the service down.
type Aggregator struct {
	sources []Source
}

// NewAggregator creates an aggregator over the given sources. Order matters:
// earlier sources are preferred.
func NewAggregator(sources ...Source) *Aggregator {
	return &Aggregator{sources: sources}
}

// FetchStats returns stats from the first source that answers.
func (a *Aggregator) FetchStats(ctx context.Context) (*FetchResult, error) {
	var lastErr error

	for _, src := range a.sources {
		stats, err := src.FetchStats(ctx)
		if err != nil {
			metrics.SourceFetchFailures.WithLabelValues(src.Name()).Inc()
			logrus.WithFields(logrus.Fields{
				"source": src.Name(),
				"error":  err,
			}).Warn("Upstream source failed")
			lastErr = err
			continue
		}

		return &FetchResult{
			Stats:     stats,
			Source:    src.Name(),
			FetchedAt: time.Now().UTC(),
		}, nil
	}

	if lastErr == nil {
		return nil, fmt.Errorf("no upstream sources configured")
	}
	return nil, fmt.Errorf("all upstream sources failed: %v", lastErr)
}
