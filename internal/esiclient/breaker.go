// Package esiclient wraps internal/httpx with ESI-specific endpoints, a
// per-resource-class circuit breaker, a secondary coarse rate cap, and the
// hoboleaks mutator-catalogue fetch.
package esiclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/evesaga/evesaga/internal/httpx"
)

// resourceClass names the ESI endpoint families that get their own
// independent circuit breaker, mirroring the teacher's per-provider
// breaker granularity but keyed by ESI resource instead of exchange.
type resourceClass string

const (
	classStations        resourceClass = "stations"
	classTypes           resourceClass = "types"
	classDogmaAttributes resourceClass = "dogma-attributes"
	classMarketGroups    resourceClass = "market-groups"
	classDynamics        resourceClass = "dynamics"
	classAssets          resourceClass = "assets"
	classAssetNames      resourceClass = "asset-names"
	classMarketOrders    resourceClass = "market-orders"
	classCharacterVerify resourceClass = "character-verify"
	classHoboleaks       resourceClass = "hoboleaks"
)

// breakerManager owns one gobreaker.CircuitBreaker per resource class, each
// tripping independently so a dead endpoint doesn't starve retries against
// healthy ones.
type breakerManager struct {
	mu       sync.Mutex
	breakers map[resourceClass]*gobreaker.CircuitBreaker
}

func newBreakerManager() *breakerManager {
	return &breakerManager{breakers: make(map[resourceClass]*gobreaker.CircuitBreaker)}
}

func (m *breakerManager) get(class resourceClass) *gobreaker.CircuitBreaker {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b, ok := m.breakers[class]; ok {
		return b
	}

	b := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        string(class),
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("esi_resource_class", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})
	m.breakers[class] = b
	return b
}

func (m *breakerManager) execute(class resourceClass, fn func() (any, error)) (any, error) {
	b := m.get(class)
	result, err := b.Execute(fn)
	if err != nil {
		return nil, fmt.Errorf("esi %s: %w", class, err)
	}
	return result, nil
}

// Client is the ESI-facing client: rate-limited transport, per-class
// circuit breakers, and a secondary coarse cap ahead of the saga's own
// fine-grained limiter, mirroring how the teacher layers its limiter
// underneath its provider circuit-breaker manager.
type Client struct {
	http     *httpx.Client
	breakers *breakerManager
	coarse   *rate.Limiter

	characters *CharacterStore

	mu              sync.Mutex
	hoboCache       MutaplasmidData
	hoboCacheFresh  bool
}

// Config configures the secondary coarse cap. The teacher's kraken
// provider uses a per-host token bucket ahead of the exchange call; ESI's
// documented burst budget is ~150 req/s sustained per IP, a low single
// ceiling is plenty here since internal/ratelimit already does the fine
// per-window admission.
type Config struct {
	CoarseRatePerSecond float64 `yaml:"coarse_rate_per_second" env:"ESI_COARSE_RATE_PER_SECOND"`
	CoarseBurst         int     `yaml:"coarse_burst" env:"ESI_COARSE_BURST"`
}

// DefaultConfig mirrors a conservative ceiling well under ESI's stated
// rate-limit error threshold.
func DefaultConfig() Config {
	return Config{CoarseRatePerSecond: 50, CoarseBurst: 50}
}

// New builds a Client over an already rate-limited httpx.Client.
func New(httpClient *httpx.Client, cfg Config) *Client {
	return &Client{
		http:       httpClient,
		breakers:   newBreakerManager(),
		coarse:     rate.NewLimiter(rate.Limit(cfg.CoarseRatePerSecond), cfg.CoarseBurst),
		characters: NewCharacterStore(),
	}
}

// Characters returns the mutex-guarded character credential table.
func (c *Client) Characters() *CharacterStore { return c.characters }

func (c *Client) admitCoarse(ctx context.Context) error {
	return c.coarse.Wait(ctx)
}
