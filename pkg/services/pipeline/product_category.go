package pipeline

import (
	"cmp"
	"context"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-normalize/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-normalize/pkg/database"
	"github.com/ekaya-inc/ekaya-normalize/pkg/models"
	"github.com/ekaya-inc/ekaya-normalize/pkg/source"
)

// ProductCategoryStage fills the productcategory table.
type ProductCategoryStage struct {
	*BaseStage
}

// NewProductCategoryStage creates the product category stage.
func NewProductCategoryStage(logger *zap.Logger) *ProductCategoryStage {
	return &ProductCategoryStage{
		BaseStage: NewBaseStage(StageProductCategory, models.ProductCategoryTable, nil, logger),
	}
}

// ExtractProductCategories zips the category and description lists of every
// line and returns one category per distinct name, sorted by name. When a name
// carries several descriptions the lexicographically first one is kept.
func ExtractProductCategories(ctx context.Context, src source.Source) ([]models.ProductCategory, error) {
	pairs := NewCollector[models.ProductCategory]()
	err := source.Scan(ctx, src, source.FieldCategoryDescriptions+1, func(rec source.Record) error {
		names := rec.Multi(source.FieldCategories)
		descriptions := rec.Multi(source.FieldCategoryDescriptions)
		if err := apperrors.CheckAligned(rec.Line,
			[]string{source.FieldName(source.FieldCategories), source.FieldName(source.FieldCategoryDescriptions)},
			len(names), len(descriptions)); err != nil {
			return err
		}
		for i, name := range names {
			pairs.Add(models.ProductCategory{Name: name, Description: descriptions[i]})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sorted := pairs.Sorted(func(a, b models.ProductCategory) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.Description, b.Description))
	})
	categories := make([]models.ProductCategory, 0, len(sorted))
	for _, c := range sorted {
		if n := len(categories); n > 0 && categories[n-1].Name == c.Name {
			continue
		}
		categories = append(categories, c)
	}
	return categories, nil
}

func (s *ProductCategoryStage) Execute(ctx context.Context, run *Run) error {
	var categories []models.ProductCategory
	return s.execute(ctx, run, stageWork{
		extract: func(ctx context.Context) (int, error) {
			var err error
			categories, err = ExtractProductCategories(ctx, run.Source)
			return len(categories), err
		},
		resolve: func(ctx context.Context, tx database.Tx) ([][]any, error) {
			rows := make([][]any, len(categories))
			for i, c := range categories {
				rows[i] = c.Values()
			}
			return rows, nil
		},
	})
}
