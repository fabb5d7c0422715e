// Package collector runs the periodic refresh loop: fetch raw counters from
// upstream, derive the projection, update metrics and persist the snapshot.
// A failed cycle leaves the previous data in place; the API keeps serving it
// marked stale until the next tick succeeds.
package collector

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"satwatch/database"
	"satwatch/metrics"
	"satwatch/projection"
	"satwatch/upstream"
)

// Collector coordinates the refresh cycle.
type Collector struct {
	calc     *projection.Calculator
	agg      *upstream.Aggregator
	price    upstream.PriceSource
	store    *database.Storage
	interval time.Duration
	timeout  time.Duration

	mu      sync.RWMutex
	current *database.Snapshot

	stopChan chan struct{}
	wg       sync.WaitGroup
	started  bool
}

// New creates a collector. price may be nil when no price source is
// configured; store may be nil to disable persistence.
func New(calc *projection.Calculator, agg *upstream.Aggregator, price upstream.PriceSource, store *database.Storage, interval, timeout time.Duration) *Collector {
	c := &Collector{
		calc:     calc,
		agg:      agg,
		price:    price,
		store:    store,
		interval: interval,
		timeout:  timeout,
		stopChan: make(chan struct{}),
	}

	// Seed from the last persisted snapshot so the API can answer before
	// the first refresh completes.
	if store != nil {
		if snap, err := store.LatestSnapshot(); err == nil {
			c.current = snap
			logrus.WithFields(logrus.Fields{
				"height":     snap.Stats.CurrentBlockHeight,
				"fetched_at": snap.FetchedAt,
			}).Info("Loaded persisted snapshot")
		}
	}

	return c
}

// Start launches the refresh loop. The first refresh runs immediately.
// The lifecycle is one-shot: a collector cannot be restarted after Stop.
func (c *Collector) Start() {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	c.wg.Add(1)
	go c.loop()
}

// Stop stops the refresh loop and waits for the in-flight cycle. The
// collector cannot be started again afterwards.
func (c *Collector) Stop() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.started = false
	c.mu.Unlock()

	close(c.stopChan)
	c.wg.Wait()
	logrus.Info("Collector stopped")
}

// Current returns the latest snapshot and whether it is stale. Data is
// considered stale once it is older than two refresh intervals.
func (c *Collector) Current() (*database.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.current == nil {
		return nil, false
	}
	stale := time.Since(c.current.FetchedAt) > 2*c.interval
	return c.current, stale
}

// loop drives periodic refreshes until Stop is called.
func (c *Collector) loop() {
	defer c.wg.Done()

	if err := c.Refresh(); err != nil {
		logrus.Errorf("Initial refresh failed: %v", err)
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			if err := c.Refresh(); err != nil {
				logrus.Errorf("Refresh failed: %v", err)
			}
		}
	}
}

// Refresh performs one fetch/compute/persist cycle.
func (c *Collector) Refresh() error {
	metrics.RefreshTotal.Inc()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	result, err := c.agg.FetchStats(ctx)
	if err != nil {
		metrics.RefreshFailures.Inc()
		return err
	}

	proj, err := c.calc.Compute(result.Stats, result.FetchedAt)
	if err != nil {
		metrics.RefreshFailures.Inc()
		return err
	}

	snap := &database.Snapshot{
		Stats:      *result.Stats,
		Projection: *proj,
		Source:     result.Source,
		FetchedAt:  result.FetchedAt,
	}

	// Price failures are non-fatal; the previous quote is carried over.
	if c.price != nil {
		quote, err := c.price.FetchPrice(ctx)
		if err != nil {
			metrics.SourceFetchFailures.WithLabelValues(c.price.Name()).Inc()
			logrus.Warnf("Price fetch failed: %v", err)
			c.mu.RLock()
			if c.current != nil {
				snap.Price = c.current.Price
			}
			c.mu.RUnlock()
		} else {
			snap.Price = quote
		}
	}

	c.mu.Lock()
	c.current = snap
	c.mu.Unlock()

	c.updateGauges(snap)

	if c.store != nil {
		if err := c.store.SaveSnapshot(snap); err != nil {
			logrus.Errorf("Failed to persist snapshot: %v", err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"source":        snap.Source,
		"height":        snap.Stats.CurrentBlockHeight,
		"percent_mined": proj.PercentMined,
	}).Info("Refreshed chain stats")

	return nil
}

func (c *Collector) updateGauges(snap *database.Snapshot) {
	metrics.BlockHeight.Set(float64(snap.Stats.CurrentBlockHeight))
	metrics.CirculatingSupplyBTC.Set(snap.Projection.CirculatingSupply.ToBTC())
	metrics.PercentMined.Set(snap.Projection.PercentMined)
	metrics.DaysToHalving.Set(snap.Projection.NextHalving.EstimatedDaysRemaining)
	if snap.Price != nil {
		metrics.PriceUSD.Set(snap.Price.PriceUSD)
	}
}
