package database

import (
	"testing"
	"time"

	"github.com/btcsuite/btcutil"
	"satwatch/projection"
	"satwatch/upstream"
)

func testSnapshot(height int64, fetchedAt time.Time) *Snapshot {
	return &Snapshot{
		Stats: projection.RawChainStats{
			TotalSatoshisMined: 19_957_621 * btcutil.SatoshiPerBitcoin,
			CurrentBlockHeight: height,
			NetworkDifficulty:  1.5e14,
			NetworkHashRate:    1.05e21,
			ObservedBlocks24h:  151,
		},
		Projection: projection.MiningProjection{
			CirculatingSupply: 19_957_621 * btcutil.SatoshiPerBitcoin,
			RemainingSupply:   1_042_379 * btcutil.SatoshiPerBitcoin,
			PercentMined:      95.04,
		},
		Price: &upstream.PriceQuote{
			PriceUSD:  109321.5,
			Source:    "coingecko",
			FetchedAt: fetchedAt,
		},
		Source:    "blockchain.info",
		FetchedAt: fetchedAt,
	}
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	store, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()

	now := time.Now().UTC().Truncate(time.Second)
	snap := testSnapshot(926444, now)

	if err := store.SaveSnapshot(snap); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	loaded, err := store.LatestSnapshot()
	if err != nil {
		t.Fatalf("LatestSnapshot failed: %v", err)
	}

	if loaded.Stats.CurrentBlockHeight != 926444 {
		t.Errorf("CurrentBlockHeight = %d, want 926444", loaded.Stats.CurrentBlockHeight)
	}
	if loaded.Source != "blockchain.info" {
		t.Errorf("Source = %q, want blockchain.info", loaded.Source)
	}
	if !loaded.FetchedAt.Equal(now) {
		t.Errorf("FetchedAt = %v, want %v", loaded.FetchedAt, now)
	}
	if loaded.Price == nil || loaded.Price.PriceUSD != 109321.5 {
		t.Errorf("Price not preserved: %+v", loaded.Price)
	}
}

func TestLatestSnapshotEmpty(t *testing.T) {
	store, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()

	if _, err := store.LatestSnapshot(); err == nil {
		t.Fatal("Expected error from empty store, got nil")
	}
}

func TestLatestSnapshotIsNewest(t *testing.T) {
	store, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()

	base := time.Now().UTC()
	for i := int64(0); i < 5; i++ {
		snap := testSnapshot(926440+i, base.Add(time.Duration(i)*time.Minute))
		if err := store.SaveSnapshot(snap); err != nil {
			t.Fatalf("SaveSnapshot %d failed: %v", i, err)
		}
	}

	loaded, err := store.LatestSnapshot()
	if err != nil {
		t.Fatalf("LatestSnapshot failed: %v", err)
	}
	if loaded.Stats.CurrentBlockHeight != 926444 {
		t.Errorf("CurrentBlockHeight = %d, want 926444 (newest)", loaded.Stats.CurrentBlockHeight)
	}
}

func TestSnapshotPruning(t *testing.T) {
	store, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()

	base := time.Now().UTC()
	for i := int64(0); i < maxSnapshots+10; i++ {
		snap := testSnapshot(900000+i, base.Add(time.Duration(i)*time.Second))
		if err := store.SaveSnapshot(snap); err != nil {
			t.Fatalf("SaveSnapshot %d failed: %v", i, err)
		}
	}

	count, err := store.SnapshotCount()
	if err != nil {
		t.Fatalf("SnapshotCount failed: %v", err)
	}
	if count > maxSnapshots {
		t.Errorf("Snapshot count = %d, want at most %d", count, maxSnapshots)
	}

	// Pruning must drop the oldest entries, not the newest.
	loaded, err := store.LatestSnapshot()
	if err != nil {
		t.Fatalf("LatestSnapshot failed: %v", err)
	}
	want := int64(900000 + maxSnapshots + 9)
	if loaded.Stats.CurrentBlockHeight != want {
		t.Errorf("CurrentBlockHeight = %d, want %d", loaded.Stats.CurrentBlockHeight, want)
	}
}

func TestStorageReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStorage(dir)
	if err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}

	snap := testSnapshot(926444, time.Now().UTC())
	if err := store.SaveSnapshot(snap); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	store.Close()

	// A restart must see the persisted snapshot.
	reopened, err := NewStorage(dir)
	if err != nil {
		t.Fatalf("Failed to reopen storage: %v", err)
	}
	defer reopened.Close()

	loaded, err := reopened.LatestSnapshot()
	if err != nil {
		t.Fatalf("LatestSnapshot after reopen failed: %v", err)
	}
	if loaded.Stats.CurrentBlockHeight != 926444 {
		t.Errorf("CurrentBlockHeight = %d, want 926444", loaded.Stats.CurrentBlockHeight)
	}
}
