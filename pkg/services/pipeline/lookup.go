package pipeline

import (
	"context"
	"fmt"

	"github.com/ekaya-inc/ekaya-normalize/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-normalize/pkg/database"
	"github.com/ekaya-inc/ekaya-normalize/pkg/models"
)

// Lookup maps business keys of a committed parent table to surrogate ids.
// It is immutable once built.
type Lookup struct {
	name string
	ids  map[string]int64
}

// NewLookup builds a lookup from an existing mapping. Used by tests and
// callers that already hold the ids.
func NewLookup(name string, ids map[string]int64) *Lookup {
	cp := make(map[string]int64, len(ids))
	for k, v := range ids {
		cp[k] = v
	}
	return &Lookup{name: name, ids: cp}
}

// Name returns the lookup name reported in resolution errors.
func (l *Lookup) Name() string { return l.name }

// Len returns the number of distinct business keys.
func (l *Lookup) Len() int { return len(l.ids) }

// Resolve returns the id for key.
func (l *Lookup) Resolve(key string) (int64, error) {
	return l.ResolveAt(0, key)
}

// ResolveAt is Resolve with the source line reported on a miss.
func (l *Lookup) ResolveAt(line int, key string) (int64, error) {
	id, ok := l.ids[key]
	if !ok {
		return 0, &apperrors.ResolutionError{Lookup: l.name, Key: key, Line: line}
	}
	return id, nil
}

// lookupSource describes how a parent table exposes its business key.
type lookupSource struct {
	table   models.Table
	columns []string
	key     func(values []string) string
}

func singleColumnKey(values []string) string { return values[0] }

var lookupSources = map[StageName]lookupSource{
	StageRegion:          {table: models.RegionTable, columns: []string{"region"}, key: singleColumnKey},
	StageCountry:         {table: models.CountryTable, columns: []string{"country"}, key: singleColumnKey},
	StageProductCategory: {table: models.ProductCategoryTable, columns: []string{"productcategory"}, key: singleColumnKey},
	StageProduct:         {table: models.ProductTable, columns: []string{"productname"}, key: singleColumnKey},
	StageCustomer: {
		table:   models.CustomerTable,
		columns: []string{"firstname", "lastname"},
		key:     func(values []string) string { return models.CustomerKey(values[0], values[1]) },
	},
}

// LoadLookup reads the business key to id mapping of a parent stage's table.
// The parent must have committed in this run. Rows are read in id order so the
// highest id wins when a business key repeats.
func LoadLookup(ctx context.Context, run *Run, tx database.Tx, parent StageName) (*Lookup, error) {
	if err := run.RequireCommitted(parent); err != nil {
		return nil, err
	}
	src, ok := lookupSources[parent]
	if !ok {
		return nil, fmt.Errorf("stage %s exposes no lookup", parent)
	}

	d := run.Store.Dialect()
	columns := append(append([]string(nil), src.columns...), src.table.PrimaryKey)
	query := database.SelectSQL(d, src.table, columns...)

	ids := make(map[string]int64)
	values := make([]string, len(src.columns))
	dest := make([]any, 0, len(columns))
	for i := range values {
		dest = append(dest, &values[i])
	}
	var id int64
	dest = append(dest, &id)

	err := tx.Query(ctx, query, nil, func(row database.Row) error {
		if err := row.Scan(dest...); err != nil {
			return err
		}
		ids[src.key(values)] = id
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load %s lookup: %w", parent, err)
	}
	return &Lookup{name: string(parent), ids: ids}, nil
}
