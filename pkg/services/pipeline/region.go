package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-normalize/pkg/database"
	"github.com/ekaya-inc/ekaya-normalize/pkg/models"
	"github.com/ekaya-inc/ekaya-normalize/pkg/source"
)

// RegionStage fills the region table with the distinct region names.
type RegionStage struct {
	*BaseStage
}

// NewRegionStage creates the region stage.
func NewRegionStage(logger *zap.Logger) *RegionStage {
	return &RegionStage{
		BaseStage: NewBaseStage(StageRegion, models.RegionTable, nil, logger),
	}
}

// ExtractRegions returns the distinct region names in lexicographic order.
func ExtractRegions(ctx context.Context, src source.Source) ([]string, error) {
	regions := NewCollector[string]()
	err := source.Scan(ctx, src, source.FieldRegion+1, func(rec source.Record) error {
		regions.Add(rec.Field(source.FieldRegion))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return regions.Sorted(strings.Compare), nil
}

func (s *RegionStage) Execute(ctx context.Context, run *Run) error {
	var regions []string
	return s.execute(ctx, run, stageWork{
		extract: func(ctx context.Context) (int, error) {
			var err error
			regions, err = ExtractRegions(ctx, run.Source)
			return len(regions), err
		},
		resolve: func(ctx context.Context, tx database.Tx) ([][]any, error) {
			rows := make([][]any, len(regions))
			for i, name := range regions {
				rows[i] = []any{name}
			}
			return rows, nil
		},
	})
}
