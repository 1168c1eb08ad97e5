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

// ProductCandidate is a distinct (name, price, category) tuple.
type ProductCandidate struct {
	Name      string
	UnitPrice float64
	Category  string
}

// ProductStage fills the product table and references productcategory.
type ProductStage struct {
	*BaseStage
}

// NewProductStage creates the product stage.
func NewProductStage(logger *zap.Logger) *ProductStage {
	return &ProductStage{
		BaseStage: NewBaseStage(StageProduct, models.ProductTable, []StageName{StageProductCategory}, logger),
	}
}

var productFields = []string{
	source.FieldName(source.FieldProducts),
	source.FieldName(source.FieldCategories),
	source.FieldName(source.FieldUnitPrices),
}

// ExtractProducts zips the product, category and price lists of every line and
// returns the distinct tuples sorted by name, price and category.
func ExtractProducts(ctx context.Context, src source.Source) ([]ProductCandidate, error) {
	products := NewCollector[ProductCandidate]()
	err := source.Scan(ctx, src, source.FieldUnitPrices+1, func(rec source.Record) error {
		names := rec.Multi(source.FieldProducts)
		categories := rec.Multi(source.FieldCategories)
		prices := rec.Multi(source.FieldUnitPrices)
		if err := apperrors.CheckAligned(rec.Line, productFields,
			len(names), len(categories), len(prices)); err != nil {
			return err
		}
		for i, name := range names {
			price, err := source.ParsePrice(rec.Line, source.FieldUnitPrices, prices[i])
			if err != nil {
				return err
			}
			products.Add(ProductCandidate{Name: name, UnitPrice: price, Category: categories[i]})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return products.Sorted(func(a, b ProductCandidate) int {
		return cmp.Or(
			cmp.Compare(a.Name, b.Name),
			cmp.Compare(a.UnitPrice, b.UnitPrice),
			cmp.Compare(a.Category, b.Category),
		)
	}), nil
}

func (s *ProductStage) Execute(ctx context.Context, run *Run) error {
	var products []ProductCandidate
	return s.execute(ctx, run, stageWork{
		extract: func(ctx context.Context) (int, error) {
			var err error
			products, err = ExtractProducts(ctx, run.Source)
			return len(products), err
		},
		resolve: func(ctx context.Context, tx database.Tx) ([][]any, error) {
			categories, err := LoadLookup(ctx, run, tx, StageProductCategory)
			if err != nil {
				return nil, err
			}
			rows := make([][]any, 0, len(products))
			for _, p := range products {
				categoryID, err := categories.Resolve(p.Category)
				if err != nil {
					return nil, err
				}
				rows = append(rows, models.Product{
					Name:       p.Name,
					UnitPrice:  p.UnitPrice,
					CategoryID: categoryID,
				}.Values())
			}
			return rows, nil
		},
	})
}
