package esiclient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/evesaga/evesaga/internal/ids"
)

const hoboleaksURL = "https://sde.hoboleaks.space/tq/dynamicitemattributes.json"

// AttributeRange is one mutator's min/max multiplier for a single dogma
// attribute, as published by the hoboleaks catalogue.
type AttributeRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// InputOutputMapping names the resulting type a mutator produces and the
// source types it may be applied to.
type InputOutputMapping struct {
	ResultingType  ids.TypeId   `json:"resultingTypeID"`
	ApplicableTypes []ids.TypeId `json:"applicableTypeIDs"`
}

// MutaplasmidEffect is one mutator type's full catalogue entry.
type MutaplasmidEffect struct {
	InputOutputMapping []InputOutputMapping                         `json:"inputOutputMapping"`
	AttributeIDs       map[ids.DogmaAttributeId]AttributeRange `json:"attributeIDs"`
}

// MutaplasmidData is the full hoboleaks mutator catalogue, keyed by
// mutator type id.
type MutaplasmidData map[ids.TypeId]MutaplasmidEffect

// FetchMutators retrieves the hoboleaks mutator catalogue. A successful
// fetch refreshes the in-process cache; on failure, a previously-cached
// value (however stale) is returned instead of an error, matching
// AppContext::get_hoboleaks_data's stale-fallback behavior. Per the
// mutator-catalogue-refresh Open Question decision, within the scope of
// one saga run this is effectively fetch-once: the assets saga's
// HoboMutators work item calls this exactly once.
func (c *Client) FetchMutators(ctx context.Context) (MutaplasmidData, error) {
	data, err := c.fetchMutatorsLive(ctx)
	if err == nil {
		c.mu.Lock()
		c.hoboCache = data
		c.hoboCacheFresh = true
		c.mu.Unlock()
		return data, nil
	}

	c.mu.Lock()
	cached, ok := c.hoboCache, c.hoboCacheFresh
	c.mu.Unlock()
	if ok {
		log.Warn().Err(err).Msg("hoboleaks fetch failed, using stale cached catalogue")
		return cached, nil
	}
	return nil, err
}

func (c *Client) fetchMutatorsLive(ctx context.Context) (MutaplasmidData, error) {
	result, err := c.breakers.execute(classHoboleaks, func() (any, error) {
		if err := c.admitCoarse(ctx); err != nil {
			return nil, err
		}
		resp, err := c.http.Get(ctx, hoboleaksURL, nil)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var data MutaplasmidData
		if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
			return nil, fmt.Errorf("decode hoboleaks catalogue: %w", err)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(MutaplasmidData), nil
}
