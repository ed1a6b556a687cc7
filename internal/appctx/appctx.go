// Package appctx wires together every long-lived collaborator a process
// needs — the asset store, static-data pool, rate-limited ESI client,
// location-chain resolver, report generator, snapshot writer/cache, and
// metrics registry — the Go analogue of original_source/src/context.rs's
// AppContext, minus the OAuth2 client and tokio-specific sync types
// (sketched only, per spec.md's Non-goals).
package appctx

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/evesaga/evesaga/internal/assetssaga"
	"github.com/evesaga/evesaga/internal/config"
	"github.com/evesaga/evesaga/internal/esiclient"
	"github.com/evesaga/evesaga/internal/httpx"
	"github.com/evesaga/evesaga/internal/ids"
	"github.com/evesaga/evesaga/internal/locationchain"
	"github.com/evesaga/evesaga/internal/marketsaga"
	"github.com/evesaga/evesaga/internal/metrics"
	"github.com/evesaga/evesaga/internal/ratelimit"
	"github.com/evesaga/evesaga/internal/report"
	"github.com/evesaga/evesaga/internal/saga"
	"github.com/evesaga/evesaga/internal/snapshot"
	"github.com/evesaga/evesaga/internal/staticdata"
	"github.com/evesaga/evesaga/internal/store"
)

// AppContext owns every collaborator that outlives a single saga run.
type AppContext struct {
	Config config.Config

	Store      *store.Store
	StaticData *staticdata.Pool
	ESI        *esiclient.Client
	Chains     *locationchain.Resolver
	Report     *report.Generator
	Metrics    *metrics.Registry

	writer      *snapshot.Writer
	reportCache *snapshot.ReportCache
	orderBook   *marketsaga.OrderBook
}

// New builds an AppContext from cfg. The static-data pool is opened
// eagerly (read-only, so failure here is always configuration error, not
// transient); the asset store starts empty, with its AbyssalSet seeded
// from the static-data pool, unless a prior snapshot is found under
// cfg.Snapshot.Dir.
func New(cfg config.Config) (*AppContext, error) {
	staticPool, err := staticdata.Open(cfg.StaticData)
	if err != nil {
		return nil, fmt.Errorf("open static-data pool: %w", err)
	}

	st, err := snapshot.Load(cfg.Snapshot.Dir)
	if err != nil {
		log.Info().Err(err).Str("dir", cfg.Snapshot.Dir).Msg("no prior snapshot, starting with an empty store")
		abyssal, abyssalErr := staticPool.AbyssalModules()
		if abyssalErr != nil {
			return nil, fmt.Errorf("load abyssal module types: %w", abyssalErr)
		}
		st = store.NewWithAbyssalSet(abyssal)
	}

	limiter := ratelimit.NewGroup().AddWindow(time.Second, 30).AddWindow(time.Minute, 300)
	httpClient := httpx.New(cfg.HTTP, limiter)
	esi := esiclient.New(httpClient, cfg.ESI)

	var cache *snapshot.ReportCache
	if cfg.Snapshot.RedisAddr != "" {
		cache = snapshot.NewReportCache(snapshot.NewAutoCache(), cfg.Snapshot.ReportTTL)
	} else {
		cache = snapshot.NewReportCache(snapshot.NewMemoryCache(), cfg.Snapshot.ReportTTL)
	}

	return &AppContext{
		Config:      cfg,
		Store:       st,
		StaticData:  staticPool,
		ESI:         esi,
		Chains:      locationchain.New(st),
		Report:      report.NewGenerator(st),
		Metrics:     metrics.New(),
		writer:      snapshot.NewWriter(cfg.Snapshot.Dir),
		reportCache: cache,
		orderBook:   marketsaga.NewOrderBook(),
	}, nil
}

// RegisterCharacter adds or replaces a character's bearer credential,
// exactly as original_source's CharacterManager.add does — held only for
// the point lookups assetssaga.Processor makes mid-run, never for the
// duration of a network call.
func (a *AppContext) RegisterCharacter(c esiclient.Character) {
	a.ESI.Characters().Add(c)
}

// RunAssetsSaga resolves characterID's full asset dependency graph,
// marking the store dirty for the next snapshot on success.
func (a *AppContext) RunAssetsSaga(ctx context.Context, characterID ids.CharacterId) error {
	processor := assetssaga.New(a.ESI, a.StaticData, a.Store)
	engine := saga.New[assetssaga.Work, assetssaga.Key, assetssaga.Result](
		processor,
		saga.WithWorkersCount[assetssaga.Work, assetssaga.Key, assetssaga.Result](a.Config.Saga.WorkersCount),
		saga.WithMaxRetries[assetssaga.Work, assetssaga.Key, assetssaga.Result](a.Config.Saga.MaxRetries),
	)

	if err := engine.Run(ctx, assetssaga.InitialSeed(characterID)); err != nil {
		a.Metrics.RecordFailure("assets", "run")
		return fmt.Errorf("run assets saga for character %d: %w", characterID, err)
	}

	a.writer.MarkDirty()
	a.Metrics.SampleStoreTableSizes(a.Store)
	a.Metrics.SampleLocationChainStats(a.Chains.Stats())
	return nil
}

// RunMarketSaga refreshes the order book for targets.
func (a *AppContext) RunMarketSaga(ctx context.Context, targets []marketsaga.SeedTarget) error {
	processor := marketsaga.New(a.ESI, a.orderBook)
	engine := saga.New[marketsaga.Work, marketsaga.Key, marketsaga.Result](
		processor,
		saga.WithWorkersCount[marketsaga.Work, marketsaga.Key, marketsaga.Result](a.Config.Saga.WorkersCount),
		saga.WithMaxRetries[marketsaga.Work, marketsaga.Key, marketsaga.Result](a.Config.Saga.MaxRetries),
	)

	if err := engine.Run(ctx, marketsaga.Seed(targets)); err != nil {
		a.Metrics.RecordFailure("market", "run")
		return fmt.Errorf("run market saga: %w", err)
	}
	return nil
}

// OrderBook exposes the accumulated market order book.
func (a *AppContext) OrderBook() *marketsaga.OrderBook {
	return a.orderBook
}

// PersistSnapshot writes the store to disk if it has changed since the
// last write.
func (a *AppContext) PersistSnapshot() error {
	return a.writer.Store(a.Store)
}

// ReportCache exposes the wired report cache for internal/httpapi.
func (a *AppContext) ReportCache() *snapshot.ReportCache {
	return a.reportCache
}
