// Package staticdata wraps the read-only embedded static-data database
// (the bundled "SDE"-style export): invTypes, dgmTypeAttributes,
// dgmAttributeTypes, invMarketGroups. Queries are batched with IN (?)
// and type/attribute rows are grouped in a single join to avoid N+1.
package staticdata

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // embedded, file-backed driver

	"github.com/evesaga/evesaga/internal/ids"
	"github.com/evesaga/evesaga/internal/store"
)

// Config configures the static-data pool.
type Config struct {
	Path         string        `yaml:"path" env:"STATICDATA_PATH"`
	MaxOpenConns int           `yaml:"max_open_conns" env:"STATICDATA_MAX_OPEN_CONNS"`
	QueryTimeout time.Duration `yaml:"query_timeout" env:"STATICDATA_QUERY_TIMEOUT"`
	Enabled      bool          `yaml:"enabled" env:"STATICDATA_ENABLED"`
}

// DefaultConfig mirrors the teacher's "disabled unless configured"
// posture for optional external stores.
func DefaultConfig() Config {
	return Config{
		MaxOpenConns: 10,
		QueryTimeout: 10 * time.Second,
		Enabled:      false,
	}
}

// Pool is a read-only connection pool over the embedded static-data file.
type Pool struct {
	db     *sqlx.DB
	config Config
}

// Open connects to the sqlite-backed static-data file at config.Path. The
// pool is read-only: no statement here ever mutates the database.
func Open(config Config) (*Pool, error) {
	if !config.Enabled {
		return &Pool{config: config}, nil
	}
	if config.Path == "" {
		return nil, fmt.Errorf("static-data path is required when enabled")
	}

	db, err := sqlx.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("open static-data pool: %w", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping static-data pool: %w", err)
	}

	return &Pool{db: db, config: config}, nil
}

// Enabled reports whether the pool is backed by a real connection.
func (p *Pool) Enabled() bool { return p.config.Enabled && p.db != nil }

// Close releases the underlying connection.
func (p *Pool) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}

func (p *Pool) queryCtx() (context.Context, context.CancelFunc) {
	timeout := p.config.QueryTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

// AbyssalModules returns the type ids whose name matches the catalogue's
// abyssal/mutated naming convention, used to seed the store's immutable
// AbyssalSet once at init.
func (p *Pool) AbyssalModules() ([]ids.TypeId, error) {
	if !p.Enabled() {
		return nil, nil
	}
	ctx, cancel := p.queryCtx()
	defer cancel()

	const query = `
		SELECT typeID FROM invTypes
		WHERE typeName LIKE '%Abyssal%' OR typeName LIKE '%Mutated%'`

	var out []ids.TypeId
	if err := p.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("abyssal modules query: %w", err)
	}
	return out, nil
}

type typeAttributeRow struct {
	TypeID          int32    `db:"typeID"`
	TypeName        string   `db:"typeName"`
	MarketGroupID   *int32   `db:"marketGroupID"`
	AttributeID     *int32   `db:"attributeID"`
	AttributeValue  *float64 `db:"attributeValue"`
}

// TypesByIDs batches a lookup of item types with their dogma attributes in
// a single LEFT JOIN query grouped by typeID, avoiding N+1 per-attribute
// round trips.
func (p *Pool) TypesByIDs(typeIDs []ids.TypeId) (map[ids.TypeId]store.ItemType, error) {
	result := make(map[ids.TypeId]store.ItemType, len(typeIDs))
	if len(typeIDs) == 0 || !p.Enabled() {
		return result, nil
	}

	query, args, err := sqlx.In(`
		SELECT
			t.typeID        AS typeID,
			t.typeName      AS typeName,
			t.marketGroupID AS marketGroupID,
			dta.attributeID AS attributeID,
			COALESCE(dta.valueFloat, CAST(dta.valueInt AS REAL)) AS attributeValue
		FROM invTypes t
		LEFT JOIN dgmTypeAttributes dta ON t.typeID = dta.typeID
		WHERE t.typeID IN (?)
		ORDER BY t.typeID, dta.attributeID`, toInt32Slice(typeIDs))
	if err != nil {
		return nil, fmt.Errorf("build types-by-ids query: %w", err)
	}
	query = p.db.Rebind(query)

	ctx, cancel := p.queryCtx()
	defer cancel()

	rows, err := p.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("types-by-ids query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row typeAttributeRow
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("scan types-by-ids row: %w", err)
		}

		typeID := ids.TypeId(row.TypeID)
		t, ok := result[typeID]
		if !ok {
			t = store.ItemType{TypeID: typeID, Name: row.TypeName}
			if row.MarketGroupID != nil {
				mg := ids.MarketGroupId(*row.MarketGroupID)
				t.MarketGroupID = &mg
			}
		}
		if row.AttributeID != nil && row.AttributeValue != nil {
			t.DogmaAttributes = append(t.DogmaAttributes, store.AttributeValue{
				AttributeID: ids.DogmaAttributeId(*row.AttributeID),
				Value:       *row.AttributeValue,
			})
		}
		result[typeID] = t
	}
	return result, rows.Err()
}

type marketGroupRow struct {
	MarketGroupID int32  `db:"marketGroupID"`
	Name          string `db:"marketGroupName"`
	ParentGroupID *int32 `db:"parentGroupID"`
}

// MarketGroupsByIDs batches a market-group lookup, including each group's
// member type ids via a second batched query.
func (p *Pool) MarketGroupsByIDs(groupIDs []ids.MarketGroupId) (map[ids.MarketGroupId]store.MarketGroup, error) {
	result := make(map[ids.MarketGroupId]store.MarketGroup, len(groupIDs))
	if len(groupIDs) == 0 || !p.Enabled() {
		return result, nil
	}

	idInts := make([]int32, len(groupIDs))
	for i, g := range groupIDs {
		idInts[i] = int32(g)
	}

	query, args, err := sqlx.In(`
		SELECT marketGroupID, marketGroupName, parentGroupID
		FROM invMarketGroups WHERE marketGroupID IN (?)`, idInts)
	if err != nil {
		return nil, fmt.Errorf("build market-groups query: %w", err)
	}
	query = p.db.Rebind(query)

	ctx, cancel := p.queryCtx()
	defer cancel()

	var rows []marketGroupRow
	if err := p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("market-groups query: %w", err)
	}

	for _, row := range rows {
		g := store.MarketGroup{MarketGroupID: ids.MarketGroupId(row.MarketGroupID), Name: row.Name}
		if row.ParentGroupID != nil {
			parent := ids.MarketGroupId(*row.ParentGroupID)
			g.ParentGroupID = &parent
		}
		result[g.MarketGroupID] = g
	}

	memberQuery, memberArgs, err := sqlx.In(`
		SELECT typeID, marketGroupID FROM invTypes WHERE marketGroupID IN (?)`, idInts)
	if err != nil {
		return nil, fmt.Errorf("build market-group members query: %w", err)
	}
	memberQuery = p.db.Rebind(memberQuery)

	memberRows, err := p.db.QueryxContext(ctx, memberQuery, memberArgs...)
	if err != nil {
		return nil, fmt.Errorf("market-group members query: %w", err)
	}
	defer memberRows.Close()

	for memberRows.Next() {
		var typeID, groupID int32
		if err := memberRows.Scan(&typeID, &groupID); err != nil {
			return nil, fmt.Errorf("scan market-group member row: %w", err)
		}
		gid := ids.MarketGroupId(groupID)
		g := result[gid]
		g.MemberTypes = append(g.MemberTypes, ids.TypeId(typeID))
		result[gid] = g
	}

	return result, memberRows.Err()
}

type dogmaAttributeRow struct {
	AttributeID int32  `db:"attributeID"`
	Name        string `db:"attributeName"`
	HighIsGood  bool   `db:"highIsGood"`
}

// DogmaAttributesByIDs batches a dogma-attribute metadata lookup.
func (p *Pool) DogmaAttributesByIDs(attrIDs []ids.DogmaAttributeId) (map[ids.DogmaAttributeId]store.DogmaAttribute, error) {
	result := make(map[ids.DogmaAttributeId]store.DogmaAttribute, len(attrIDs))
	if len(attrIDs) == 0 || !p.Enabled() {
		return result, nil
	}

	idInts := make([]int32, len(attrIDs))
	for i, a := range attrIDs {
		idInts[i] = int32(a)
	}

	query, args, err := sqlx.In(`
		SELECT attributeID, attributeName, highIsGood
		FROM dgmAttributeTypes WHERE attributeID IN (?)`, idInts)
	if err != nil {
		return nil, fmt.Errorf("build dogma-attributes query: %w", err)
	}
	query = p.db.Rebind(query)

	ctx, cancel := p.queryCtx()
	defer cancel()

	var rows []dogmaAttributeRow
	if err := p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("dogma-attributes query: %w", err)
	}

	for _, row := range rows {
		result[ids.DogmaAttributeId(row.AttributeID)] = store.DogmaAttribute{
			AttributeID: ids.DogmaAttributeId(row.AttributeID),
			Name:        row.Name,
			HighIsGood:  row.HighIsGood,
		}
	}
	return result, nil
}

func toInt32Slice(typeIDs []ids.TypeId) []int32 {
	out := make([]int32, len(typeIDs))
	for i, t := range typeIDs {
		out[i] = int32(t)
	}
	return out
}
