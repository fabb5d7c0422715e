package collector

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/btcsuite/btcutil"
	"satwatch/chaincfg"
	"satwatch/database"
	"satwatch/projection"
	"satwatch/upstream"
)

// fakeSource returns canned stats, optionally failing first.
type fakeSource struct {
	stats    projection.RawChainStats
	failNext bool
}

func (s *fakeSource) Name() string { return "fake" }

func (s *fakeSource) FetchStats(ctx context.Context) (*projection.RawChainStats, error) {
	if s.failNext {
		s.failNext = false
		return nil, fmt.Errorf("temporary failure")
	}
	stats := s.stats
	return &stats, nil
}

// fakePrice returns a canned quote.
type fakePrice struct{}

func (fakePrice) Name() string { return "fakeprice" }

func (fakePrice) FetchPrice(ctx context.Context) (*upstream.PriceQuote, error) {
	return &upstream.PriceQuote{
		PriceUSD:  109321.5,
		Source:    "fakeprice",
		FetchedAt: time.Now().UTC(),
	}, nil
}

func testStats() projection.RawChainStats {
	return projection.RawChainStats{
		TotalSatoshisMined: 19_957_621 * btcutil.SatoshiPerBitcoin,
		CurrentBlockHeight: 926444,
		NetworkDifficulty:  1.5e14,
		NetworkHashRate:    1.05e21,
		ObservedBlocks24h:  151,
	}
}

func newTestCollector(t *testing.T, src upstream.Source, store *database.Storage) *Collector {
	t.Helper()
	calc := projection.NewCalculator(&chaincfg.MainNetParams)
	agg := upstream.NewAggregator(src)
	return New(calc, agg, fakePrice{}, store, 5*time.Minute, 5*time.Second)
}

func TestRefreshUpdatesCurrent(t *testing.T) {
	c := newTestCollector(t, &fakeSource{stats: testStats()}, nil)

	if snap, _ := c.Current(); snap != nil {
		t.Fatal("Expected no snapshot before first refresh")
	}

	if err := c.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	snap, stale := c.Current()
	if snap == nil {
		t.Fatal("Expected snapshot after refresh")
	}
	if stale {
		t.Error("Fresh snapshot reported as stale")
	}
	if snap.Stats.CurrentBlockHeight != 926444 {
		t.Errorf("CurrentBlockHeight = %d, want 926444", snap.Stats.CurrentBlockHeight)
	}
	if snap.Projection.BlockReward.ToBTC() != 3.125 {
		t.Errorf("BlockReward = %v BTC, want 3.125", snap.Projection.BlockReward.ToBTC())
	}
	if snap.Source != "fake" {
		t.Errorf("Source = %q, want fake", snap.Source)
	}
	if snap.Price == nil || snap.Price.PriceUSD != 109321.5 {
		t.Errorf("Price not captured: %+v", snap.Price)
	}
}

func TestRefreshFailureKeepsLastGood(t *testing.T) {
	src := &fakeSource{stats: testStats()}
	c := newTestCollector(t, src, nil)

	if err := c.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	src.failNext = true
	if err := c.Refresh(); err == nil {
		t.Fatal("Expected error from failing source, got nil")
	}

	snap, _ := c.Current()
	if snap == nil {
		t.Fatal("Last known good snapshot was dropped on failure")
	}
	if snap.Stats.CurrentBlockHeight != 926444 {
		t.Errorf("CurrentBlockHeight = %d, want 926444", snap.Stats.CurrentBlockHeight)
	}
}

func TestRefreshPersistsSnapshot(t *testing.T) {
	store, err := database.NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()

	c := newTestCollector(t, &fakeSource{stats: testStats()}, store)

	if err := c.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	persisted, err := store.LatestSnapshot()
	if err != nil {
		t.Fatalf("LatestSnapshot failed: %v", err)
	}
	if persisted.Stats.CurrentBlockHeight != 926444 {
		t.Errorf("Persisted height = %d, want 926444", persisted.Stats.CurrentBlockHeight)
	}
}

func TestCollectorSeedsFromStore(t *testing.T) {
	dir := t.TempDir()

	store, err := database.NewStorage(dir)
	if err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	c := newTestCollector(t, &fakeSource{stats: testStats()}, store)
	if err := c.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	store.Close()

	// A new collector over the same store answers before any refresh.
	reopened, err := database.NewStorage(dir)
	if err != nil {
		t.Fatalf("Failed to reopen storage: %v", err)
	}
	defer reopened.Close()

	seeded := newTestCollector(t, &fakeSource{stats: testStats()}, reopened)
	snap, _ := seeded.Current()
	if snap == nil {
		t.Fatal("Expected seeded snapshot from persisted store")
	}
	if snap.Stats.CurrentBlockHeight != 926444 {
		t.Errorf("Seeded height = %d, want 926444", snap.Stats.CurrentBlockHeight)
	}
}

func TestCurrentReportsStale(t *testing.T) {
	calc := projection.NewCalculator(&chaincfg.MainNetParams)
	agg := upstream.NewAggregator(&fakeSource{stats: testStats()})
	c := New(calc, agg, nil, nil, 20*time.Millisecond, 5*time.Second)

	if err := c.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if _, stale := c.Current(); stale {
		t.Error("Fresh snapshot reported as stale")
	}

	// Data becomes stale once it is older than two refresh intervals.
	time.Sleep(60 * time.Millisecond)

	snap, stale := c.Current()
	if snap == nil {
		t.Fatal("Snapshot dropped instead of served stale")
	}
	if !stale {
		t.Error("Aged snapshot not reported as stale")
	}

	// A successful refresh clears the staleness.
	if err := c.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if _, stale := c.Current(); stale {
		t.Error("Refreshed snapshot reported as stale")
	}
}

func TestStartStop(t *testing.T) {
	c := newTestCollector(t, &fakeSource{stats: testStats()}, nil)

	c.Start()

	// The initial refresh runs immediately on start.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if snap, _ := c.Current(); snap != nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for initial refresh")
		}
		time.Sleep(10 * time.Millisecond)
	}

	c.Stop()
}
