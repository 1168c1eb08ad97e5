package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-normalize/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-normalize/pkg/database"
	"github.com/ekaya-inc/ekaya-normalize/pkg/models"
	"github.com/ekaya-inc/ekaya-normalize/pkg/source"
)

// OrderItem is one positional (product, quantity, date) triple of a source line.
type OrderItem struct {
	Line      int
	Customer  string // customer business key
	Product   string
	OrderDate time.Time
	Quantity  int
}

// OrderDetailStage fills the orderdetail table and references customer and product.
type OrderDetailStage struct {
	*BaseStage
}

// NewOrderDetailStage creates the order detail stage.
func NewOrderDetailStage(logger *zap.Logger) *OrderDetailStage {
	return &OrderDetailStage{
		BaseStage: NewBaseStage(StageOrderDetail, models.OrderDetailTable,
			[]StageName{StageCustomer, StageProduct}, logger),
	}
}

var orderItemFields = []string{
	source.FieldName(source.FieldProducts),
	source.FieldName(source.FieldQuantities),
	source.FieldName(source.FieldOrderDates),
}

// ExtractOrderItems zips the product, quantity and date lists of every line
// positionally and returns one item per triple, in source order.
func ExtractOrderItems(ctx context.Context, src source.Source) ([]OrderItem, error) {
	var items []OrderItem
	err := source.Scan(ctx, src, source.FieldOrderDates+1, func(rec source.Record) error {
		customer := models.CustomerKey(models.SplitCustomerName(rec.Field(source.FieldCustomerName)))
		products := rec.Multi(source.FieldProducts)
		quantities := rec.Multi(source.FieldQuantities)
		dates := rec.Multi(source.FieldOrderDates)
		if err := apperrors.CheckAligned(rec.Line, orderItemFields,
			len(products), len(quantities), len(dates)); err != nil {
			return err
		}
		for i, product := range products {
			qty, err := source.ParseQuantity(rec.Line, source.FieldQuantities, quantities[i])
			if err != nil {
				return err
			}
			date, err := source.ParseDate(rec.Line, source.FieldOrderDates, dates[i])
			if err != nil {
				return err
			}
			items = append(items, OrderItem{
				Line:      rec.Line,
				Customer:  customer,
				Product:   product,
				OrderDate: date,
				Quantity:  qty,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *OrderDetailStage) Execute(ctx context.Context, run *Run) error {
	var items []OrderItem
	return s.execute(ctx, run, stageWork{
		batched: true,
		extract: func(ctx context.Context) (int, error) {
			var err error
			items, err = ExtractOrderItems(ctx, run.Source)
			return len(items), err
		},
		resolve: func(ctx context.Context, tx database.Tx) ([][]any, error) {
			customers, err := LoadLookup(ctx, run, tx, StageCustomer)
			if err != nil {
				return nil, err
			}
			products, err := LoadLookup(ctx, run, tx, StageProduct)
			if err != nil {
				return nil, err
			}

			d := run.Store.Dialect()
			rows := make([][]any, 0, len(items))
			for _, item := range items {
				customerID, err := customers.ResolveAt(item.Line, item.Customer)
				if err != nil {
					return nil, err
				}
				productID, err := products.ResolveAt(item.Line, item.Product)
				if err != nil {
					return nil, err
				}
				rows = append(rows, []any{customerID, productID, d.BindDate(item.OrderDate), item.Quantity})
			}
			return rows, nil
		},
	})
}
