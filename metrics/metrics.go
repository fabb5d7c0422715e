package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "satwatch"
)

var (
	// Chain state gauges, updated on every successful refresh
	BlockHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "block_height",
		Help:      "Chain tip height from the last successful refresh",
	})

	CirculatingSupplyBTC = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "circulating_supply_btc",
		Help:      "Circulating supply in BTC from the last successful refresh",
	})

	PercentMined = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "percent_mined",
		Help:      "Percentage of total supply already mined",
	})

	DaysToHalving = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "days_to_halving",
		Help:      "Estimated days until the next subsidy halving",
	})

	PriceUSD = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "price_usd",
		Help:      "Spot price in USD from the last successful refresh",
	})

	// Refresh cycle metrics
	RefreshTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_total",
		Help:      "Total number of refresh cycles attempted",
	})

	RefreshFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_failures_total",
		Help:      "Total number of refresh cycles that failed entirely",
	})

	SourceFetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_fetch_failures_total",
		Help:      "Total number of failed fetches per upstream source",
	}, []string{"source"})

	// API metrics
	ServedStale = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "served_stale_total",
		Help:      "Total number of responses served from a stale snapshot",
	})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_hits_total",
		Help:      "Total number of responses served from the TTL cache",
	})
)
