package esiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/evesaga/evesaga/internal/ids"
	"github.com/evesaga/evesaga/internal/store"
)

const esiBase = "https://esi.evetech.net/latest"

// VerifyCharacter resolves the bearer token's owning character, the
// Go analogue of get_character_info / the /verify/ endpoint.
func (c *Client) VerifyCharacter(ctx context.Context, accessToken string) (Character, error) {
	result, err := c.breakers.execute(classCharacterVerify, func() (any, error) {
		if err := c.admitCoarse(ctx); err != nil {
			return nil, err
		}
		resp, err := c.http.Get(ctx, "https://esi.evetech.net/verify/", func(h http.Header) {
			h.Set("Authorization", bearerHeader(accessToken))
		})
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var out struct {
			CharacterID   ids.CharacterId `json:"CharacterID"`
			CharacterName string          `json:"CharacterName"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, fmt.Errorf("decode character verify response: %w", err)
		}
		return Character{CharacterID: out.CharacterID, CharacterName: out.CharacterName, AccessToken: accessToken}, nil
	})
	if err != nil {
		return Character{}, err
	}
	return result.(Character), nil
}

// AssetsPageResult is one page of a character's asset listing along with
// the total page count reported by the x-pages header.
type AssetsPageResult struct {
	Items      []store.AssetItem
	TotalPages int
}

// AssetsPage fetches page (1-indexed) of characterID's asset listing.
func (c *Client) AssetsPage(ctx context.Context, accessToken string, characterID ids.CharacterId, page int) (AssetsPageResult, error) {
	url := fmt.Sprintf("%s/characters/%d/assets/?page=%d", esiBase, characterID, page)

	result, err := c.breakers.execute(classAssets, func() (any, error) {
		if err := c.admitCoarse(ctx); err != nil {
			return nil, err
		}
		resp, err := c.http.Get(ctx, url, func(h http.Header) {
			h.Set("Authorization", bearerHeader(accessToken))
		})
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		totalPages := 1
		if v := resp.Header.Get("x-pages"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				totalPages = n
			}
		}

		var items []store.AssetItem
		if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
			return nil, fmt.Errorf("decode assets page: %w", err)
		}
		return AssetsPageResult{Items: items, TotalPages: totalPages}, nil
	})
	if err != nil {
		return AssetsPageResult{}, err
	}
	return result.(AssetsPageResult), nil
}

// AssetNames bulk-resolves asset names for the given item ids in a single
// POST, mirroring get_assets_names's batching.
func (c *Client) AssetNames(ctx context.Context, accessToken string, characterID ids.CharacterId, itemIDs []ids.ItemId) ([]store.AssetName, error) {
	url := fmt.Sprintf("%s/characters/%d/assets/names/", esiBase, characterID)

	result, err := c.breakers.execute(classAssetNames, func() (any, error) {
		if err := c.admitCoarse(ctx); err != nil {
			return nil, err
		}
		resp, err := c.http.Post(ctx, url, itemIDs, func(h http.Header) {
			h.Set("Authorization", bearerHeader(accessToken))
		})
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var names []store.AssetName
		if err := json.NewDecoder(resp.Body).Decode(&names); err != nil {
			return nil, fmt.Errorf("decode asset names: %w", err)
		}
		return names, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]store.AssetName), nil
}

// Dynamic fetches one dynamic item's perturbed dogma attributes.
func (c *Client) Dynamic(ctx context.Context, itemID ids.ItemId, typeID ids.TypeId) (store.DynamicItem, error) {
	url := fmt.Sprintf("%s/dogma/dynamic/items/%d/%d/", esiBase, typeID, itemID)

	result, err := c.breakers.execute(classDynamics, func() (any, error) {
		if err := c.admitCoarse(ctx); err != nil {
			return nil, err
		}
		resp, err := c.http.Get(ctx, url, nil)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var wire struct {
			SourceType ids.TypeId `json:"source_type"`
			MutatorID  ids.TypeId `json:"mutator_type_id"`
			Attrs      []struct {
				AttributeID ids.DogmaAttributeId `json:"attribute_id"`
				Value       float64              `json:"value"`
			} `json:"dogma_attributes"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
			return nil, fmt.Errorf("decode dynamic item: %w", err)
		}

		out := store.DynamicItem{ItemID: itemID, SourceTypeID: wire.SourceType, MutatorTypeID: wire.MutatorID}
		for _, a := range wire.Attrs {
			out.DogmaAttributes = append(out.DogmaAttributes, store.AttributeValue{AttributeID: a.AttributeID, Value: a.Value})
		}
		return out, nil
	})
	if err != nil {
		return store.DynamicItem{}, err
	}
	return result.(store.DynamicItem), nil
}

// Station fetches a station's metadata.
func (c *Client) Station(ctx context.Context, stationID ids.StationId) (store.Station, error) {
	url := fmt.Sprintf("%s/universe/stations/%d/", esiBase, stationID)

	result, err := c.breakers.execute(classStations, func() (any, error) {
		if err := c.admitCoarse(ctx); err != nil {
			return nil, err
		}
		resp, err := c.http.Get(ctx, url, nil)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var wire struct {
			Name     string `json:"name"`
			SystemID int64  `json:"system_id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
			return nil, fmt.Errorf("decode station: %w", err)
		}
		return store.Station{StationID: stationID, Name: wire.Name, SystemID: wire.SystemID}, nil
	})
	if err != nil {
		return store.Station{}, err
	}
	return result.(store.Station), nil
}

// DogmaAttribute fetches dogma attribute metadata.
func (c *Client) DogmaAttribute(ctx context.Context, attributeID ids.DogmaAttributeId) (store.DogmaAttribute, error) {
	url := fmt.Sprintf("%s/dogma/attributes/%d/", esiBase, attributeID)

	result, err := c.breakers.execute(classDogmaAttributes, func() (any, error) {
		if err := c.admitCoarse(ctx); err != nil {
			return nil, err
		}
		resp, err := c.http.Get(ctx, url, nil)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var wire struct {
			Name       string `json:"display_name"`
			HighIsGood bool   `json:"high_is_good"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
			return nil, fmt.Errorf("decode dogma attribute: %w", err)
		}
		return store.DogmaAttribute{AttributeID: attributeID, Name: wire.Name, HighIsGood: wire.HighIsGood}, nil
	})
	if err != nil {
		return store.DogmaAttribute{}, err
	}
	return result.(store.DogmaAttribute), nil
}

// Type fetches an item type's metadata (but not its dogma attributes —
// ESI's /universe/types/ endpoint doesn't return them; that is why the
// static-data pool is tried first).
func (c *Client) Type(ctx context.Context, typeID ids.TypeId) (store.ItemType, error) {
	url := fmt.Sprintf("%s/universe/types/%d/", esiBase, typeID)

	result, err := c.breakers.execute(classTypes, func() (any, error) {
		if err := c.admitCoarse(ctx); err != nil {
			return nil, err
		}
		resp, err := c.http.Get(ctx, url, nil)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var wire struct {
			Name          string `json:"name"`
			MarketGroupID *int32 `json:"market_group_id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
			return nil, fmt.Errorf("decode type: %w", err)
		}
		t := store.ItemType{TypeID: typeID, Name: wire.Name}
		if wire.MarketGroupID != nil {
			mg := ids.MarketGroupId(*wire.MarketGroupID)
			t.MarketGroupID = &mg
		}
		return t, nil
	})
	if err != nil {
		return store.ItemType{}, err
	}
	return result.(store.ItemType), nil
}

// MarketGroup fetches a market group's metadata.
func (c *Client) MarketGroup(ctx context.Context, groupID ids.MarketGroupId) (store.MarketGroup, error) {
	url := fmt.Sprintf("%s/markets/groups/%d/", esiBase, groupID)

	result, err := c.breakers.execute(classMarketGroups, func() (any, error) {
		if err := c.admitCoarse(ctx); err != nil {
			return nil, err
		}
		resp, err := c.http.Get(ctx, url, nil)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var wire struct {
			Name          string `json:"market_group_name"`
			ParentGroupID *int32 `json:"parent_group_id"`
			Types         []int32 `json:"types"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
			return nil, fmt.Errorf("decode market group: %w", err)
		}
		g := store.MarketGroup{MarketGroupID: groupID, Name: wire.Name}
		if wire.ParentGroupID != nil {
			parent := ids.MarketGroupId(*wire.ParentGroupID)
			g.ParentGroupID = &parent
		}
		for _, t := range wire.Types {
			g.MemberTypes = append(g.MemberTypes, ids.TypeId(t))
		}
		return g, nil
	})
	if err != nil {
		return store.MarketGroup{}, err
	}
	return result.(store.MarketGroup), nil
}

// MarketOrdersResult is one page of a region's order book for one type.
type MarketOrdersResult struct {
	Orders     []store.MarketOrder
	TotalPages int
}

// MarketOrders fetches page (1-indexed) of regionID's order book for
// typeID, either side ("buy" or "sell").
func (c *Client) MarketOrders(ctx context.Context, regionID ids.RegionId, typeID ids.TypeId, side string, page int) (MarketOrdersResult, error) {
	url := fmt.Sprintf("%s/markets/%d/orders?order_type=%s&type_id=%d&page=%d", esiBase, regionID, side, typeID, page)

	result, err := c.breakers.execute(classMarketOrders, func() (any, error) {
		if err := c.admitCoarse(ctx); err != nil {
			return nil, err
		}
		resp, err := c.http.Get(ctx, url, nil)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		totalPages := 1
		if v := resp.Header.Get("x-pages"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				totalPages = n
			}
		}

		var wire []struct {
			OrderID      int64   `json:"order_id"`
			TypeID       int32   `json:"type_id"`
			IsBuyOrder   bool    `json:"is_buy_order"`
			Price        float64 `json:"price"`
			VolumeRemain int64   `json:"volume_remain"`
			LocationID   int64   `json:"location_id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
			return nil, fmt.Errorf("decode market orders: %w", err)
		}

		orders := make([]store.MarketOrder, 0, len(wire))
		for _, o := range wire {
			orders = append(orders, store.MarketOrder{
				OrderID:   o.OrderID,
				TypeID:    ids.TypeId(o.TypeID),
				RegionID:  regionID,
				IsBuy:     o.IsBuyOrder,
				Price:     o.Price,
				Volume:    o.VolumeRemain,
				StationID: ids.StationId(o.LocationID),
			})
		}
		return MarketOrdersResult{Orders: orders, TotalPages: totalPages}, nil
	})
	if err != nil {
		return MarketOrdersResult{}, err
	}
	return result.(MarketOrdersResult), nil
}
