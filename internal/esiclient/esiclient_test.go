package esiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/evesaga/evesaga/internal/httpx"
	"github.com/evesaga/evesaga/internal/ratelimit"
)

func TestCharacterStore_AddAndGet(t *testing.T) {
	cs := NewCharacterStore()
	cs.Add(Character{CharacterID: 42, CharacterName: "Capsuleer", AccessToken: "tok"})

	got, err := cs.Get(42)
	require.NoError(t, err)
	require.Equal(t, "Capsuleer", got.CharacterName)

	_, err = cs.Get(99)
	require.Error(t, err)
}

// endpoints.go hardcodes the single ESI base URL (per spec.md §5), so the
// resource-specific helpers (AssetsPage, Type, ...) can't be pointed at a
// local httptest server directly; this test instead drives the raw
// httpx.Client against a fake server to confirm the x-pages header
// contract the helpers rely on.
func TestHTTPClient_ExposesXPagesHeaderForPaginationParsing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-pages", "3")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	limiter := ratelimit.NewGroup().AddWindow(time.Second, 100)
	hc := httpx.New(httpx.Config{Timeout: time.Second}, limiter)

	resp, err := hc.Get(context.Background(), server.URL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "3", resp.Header.Get("x-pages"))
}

func TestBreakerManager_TripsAfterConsecutiveFailures(t *testing.T) {
	bm := newBreakerManager()
	failing := func() (any, error) { return nil, context.DeadlineExceeded }

	for i := 0; i < 5; i++ {
		_, _ = bm.execute(classStations, failing)
	}

	_, err := bm.execute(classStations, func() (any, error) { return "ok", nil })
	require.Error(t, err)
}
