package assetssaga

import (
	"context"
	"fmt"

	"github.com/evesaga/evesaga/internal/esiclient"
	"github.com/evesaga/evesaga/internal/ids"
	"github.com/evesaga/evesaga/internal/mutatorindex"
	"github.com/evesaga/evesaga/internal/staticdata"
	"github.com/evesaga/evesaga/internal/store"
)

// Processor implements saga.Processor[Work, Key, Result]: it resolves
// Type/MarketGroup/DogmaAttribute against the local static-data pool
// before falling back to ESI, fetches Station remote-only, serves Dynamic
// from the store when it already holds that item and otherwise fetches it
// from ESI, and applies every result to the shared store.
type Processor struct {
	esi    *esiclient.Client
	static *staticdata.Pool
	store  *store.Store
}

// New builds a Processor over the given ESI client, static-data pool, and
// target store.
func New(esi *esiclient.Client, static *staticdata.Pool, st *store.Store) *Processor {
	return &Processor{esi: esi, static: static, store: st}
}

// KeyOf satisfies saga.Processor.
func (p *Processor) KeyOf(w Work) Key { return KeyOf(w) }

// Process fetches/computes the result for one Work item.
func (p *Processor) Process(ctx context.Context, w Work) (Result, error) {
	switch w.Kind {
	case KindHoboMutators:
		return p.processHoboMutators(ctx)
	case KindAssetsPage:
		return p.processAssetsPage(ctx, w)
	case KindAssetsNames:
		return p.processAssetsNames(ctx, w)
	case KindDynamic:
		return p.processDynamic(ctx, w)
	case KindType:
		return p.processType(ctx, w)
	case KindMarketGroup:
		return p.processMarketGroup(ctx, w)
	case KindStation:
		return p.processStation(ctx, w)
	case KindDogmaAttribute:
		return p.processDogmaAttribute(ctx, w)
	default:
		return Result{}, fmt.Errorf("assetssaga: unknown work kind %q", w.Kind)
	}
}

func (p *Processor) processHoboMutators(ctx context.Context) (Result, error) {
	data, err := p.esi.FetchMutators(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("fetch hoboleaks mutators: %w", err)
	}
	return Result{Kind: KindHoboMutators, Hobo: data}, nil
}

func (p *Processor) character(characterID ids.CharacterId) (esiclient.Character, error) {
	c, err := p.esi.Characters().Get(characterID)
	if err != nil {
		return esiclient.Character{}, fmt.Errorf("assetssaga: %w", err)
	}
	return c, nil
}

func (p *Processor) processAssetsPage(ctx context.Context, w Work) (Result, error) {
	character, err := p.character(w.CharacterID)
	if err != nil {
		return Result{}, err
	}
	page, err := p.esi.AssetsPage(ctx, character.AccessToken, w.CharacterID, w.Page)
	if err != nil {
		return Result{}, fmt.Errorf("fetch assets page %d: %w", w.Page, err)
	}
	return Result{
		Kind:        KindAssetsPage,
		CharacterID: w.CharacterID,
		Page:        w.Page,
		TotalPages:  page.TotalPages,
		Assets:      page.Items,
	}, nil
}

func (p *Processor) processAssetsNames(ctx context.Context, w Work) (Result, error) {
	character, err := p.character(w.CharacterID)
	if err != nil {
		return Result{}, err
	}
	names, err := p.esi.AssetNames(ctx, character.AccessToken, w.CharacterID, w.ItemIDs)
	if err != nil {
		return Result{}, fmt.Errorf("fetch asset names for page %d: %w", w.Page, err)
	}
	return Result{Kind: KindAssetsNames, CharacterID: w.CharacterID, Page: w.Page, AssetNames: names}, nil
}

func (p *Processor) processDynamic(ctx context.Context, w Work) (Result, error) {
	if cached, ok := p.store.GetDynamicItem(w.ItemID); ok {
		return Result{Kind: KindDynamic, Dynamic: cached}, nil
	}
	dyn, err := p.esi.Dynamic(ctx, w.ItemID, w.TypeID)
	if err != nil {
		return Result{}, fmt.Errorf("fetch dynamic item %d: %w", w.ItemID, err)
	}
	return Result{Kind: KindDynamic, Dynamic: dyn}, nil
}

func (p *Processor) processType(ctx context.Context, w Work) (Result, error) {
	if cached, ok, err := p.typeFromStaticData(w.TypeID); err != nil {
		return Result{}, err
	} else if ok {
		return Result{Kind: KindType, TypeID: w.TypeID, ItemType: cached}, nil
	}

	t, err := p.esi.Type(ctx, w.TypeID)
	if err != nil {
		return Result{}, fmt.Errorf("fetch type %d: %w", w.TypeID, err)
	}
	return Result{Kind: KindType, TypeID: w.TypeID, ItemType: t}, nil
}

func (p *Processor) typeFromStaticData(typeID ids.TypeId) (store.ItemType, bool, error) {
	if p.static == nil || !p.static.Enabled() {
		return store.ItemType{}, false, nil
	}
	found, err := p.static.TypesByIDs([]ids.TypeId{typeID})
	if err != nil {
		return store.ItemType{}, false, fmt.Errorf("static-data type lookup: %w", err)
	}
	t, ok := found[typeID]
	return t, ok, nil
}

func (p *Processor) processMarketGroup(ctx context.Context, w Work) (Result, error) {
	if p.static != nil && p.static.Enabled() {
		found, err := p.static.MarketGroupsByIDs([]ids.MarketGroupId{w.MarketGroupID})
		if err != nil {
			return Result{}, fmt.Errorf("static-data market-group lookup: %w", err)
		}
		if g, ok := found[w.MarketGroupID]; ok {
			return Result{Kind: KindMarketGroup, MarketGroup: g}, nil
		}
	}

	g, err := p.esi.MarketGroup(ctx, w.MarketGroupID)
	if err != nil {
		return Result{}, fmt.Errorf("fetch market group %d: %w", w.MarketGroupID, err)
	}
	return Result{Kind: KindMarketGroup, MarketGroup: g}, nil
}

func (p *Processor) processStation(ctx context.Context, w Work) (Result, error) {
	st, err := p.esi.Station(ctx, w.StationID)
	if err != nil {
		return Result{}, fmt.Errorf("fetch station %d: %w", w.StationID, err)
	}
	return Result{Kind: KindStation, Station: st}, nil
}

func (p *Processor) processDogmaAttribute(ctx context.Context, w Work) (Result, error) {
	if p.static != nil && p.static.Enabled() {
		found, err := p.static.DogmaAttributesByIDs([]ids.DogmaAttributeId{w.DogmaAttributeID})
		if err != nil {
			return Result{}, fmt.Errorf("static-data dogma-attribute lookup: %w", err)
		}
		if a, ok := found[w.DogmaAttributeID]; ok {
			return Result{Kind: KindDogmaAttribute, DogmaAttribute: a}, nil
		}
	}

	a, err := p.esi.DogmaAttribute(ctx, w.DogmaAttributeID)
	if err != nil {
		return Result{}, fmt.Errorf("fetch dogma attribute %d: %w", w.DogmaAttributeID, err)
	}
	return Result{Kind: KindDogmaAttribute, DogmaAttribute: a}, nil
}

// Apply writes result to the store and returns any newly-referenced Work
// items it surfaced.
func (p *Processor) Apply(ctx context.Context, result Result) ([]Work, error) {
	switch result.Kind {
	case KindHoboMutators:
		return p.applyHoboMutators(result)
	case KindAssetsPage:
		return p.applyAssetsPage(result)
	case KindAssetsNames:
		return p.applyAssetsNames(result)
	case KindDynamic:
		return impliedToWorkList(p.store.AddDynamicItem(result.Dynamic)), nil
	case KindType:
		return impliedToWorkList(p.store.AddItemType(result.ItemType)), nil
	case KindMarketGroup:
		return impliedToWorkList(p.store.AddMarketGroup(result.MarketGroup)), nil
	case KindStation:
		return impliedToWorkList(p.store.AddStation(result.Station)), nil
	case KindDogmaAttribute:
		return impliedToWorkList(p.store.AddDogmaAttribute(result.DogmaAttribute)), nil
	default:
		return nil, fmt.Errorf("assetssaga: unknown result kind %q", result.Kind)
	}
}

func (p *Processor) applyHoboMutators(result Result) ([]Work, error) {
	entries := make([]store.MutatorCatalogueEntry, 0, len(result.Hobo))
	for mutatorTypeID, effect := range result.Hobo {
		attrs := make(map[ids.DogmaAttributeId]mutatorindex.AttributeRange, len(effect.AttributeIDs))
		for attrID, r := range effect.AttributeIDs {
			attrs[attrID] = mutatorindex.AttributeRange{Min: r.Min, Max: r.Max}
		}
		mapping := make([]mutatorindex.InputOutput, 0, len(effect.InputOutputMapping))
		for _, io := range effect.InputOutputMapping {
			mapping = append(mapping, mutatorindex.InputOutput{
				ResultingTypeID: io.ResultingType,
				SourceTypeIDs:   io.ApplicableTypes,
			})
		}
		entries = append(entries, store.MutatorCatalogueEntry{
			MutatorTypeID: mutatorTypeID,
			Attributes:    attrs,
			Mapping:       mapping,
		})
	}
	return impliedToWorkList(p.store.AddMutatorCatalogue(entries)), nil
}

func (p *Processor) applyAssetsPage(result Result) ([]Work, error) {
	var produced []Work

	itemIDs := make([]ids.ItemId, 0, len(result.Assets))
	for _, asset := range result.Assets {
		produced = append(produced, impliedToWorkList(p.store.AddAssetItem(asset))...)
		itemIDs = append(itemIDs, asset.ItemID)
	}

	if result.Page == 1 {
		for page := 2; page <= result.TotalPages; page++ {
			produced = append(produced, Work{Kind: KindAssetsPage, CharacterID: result.CharacterID, Page: page})
		}
	}

	produced = append(produced, Work{
		Kind:        KindAssetsNames,
		CharacterID: result.CharacterID,
		Page:        result.Page,
		ItemIDs:     itemIDs,
	})

	return produced, nil
}

func (p *Processor) applyAssetsNames(result Result) ([]Work, error) {
	for _, name := range result.AssetNames {
		p.store.AddAssetName(name)
	}
	return nil, nil
}
