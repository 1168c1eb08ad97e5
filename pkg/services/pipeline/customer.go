package pipeline

import (
	"cmp"
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-normalize/pkg/database"
	"github.com/ekaya-inc/ekaya-normalize/pkg/models"
	"github.com/ekaya-inc/ekaya-normalize/pkg/source"
)

// CustomerCandidate is one customer occurrence. Customers are never deduplicated.
type CustomerCandidate struct {
	Line      int
	FirstName string
	LastName  string
	Address   string
	City      string
	Country   string
}

// CustomerStage fills the customer table and references country.
type CustomerStage struct {
	*BaseStage
}

// NewCustomerStage creates the customer stage.
func NewCustomerStage(logger *zap.Logger) *CustomerStage {
	return &CustomerStage{
		BaseStage: NewBaseStage(StageCustomer, models.CustomerTable, []StageName{StageCountry}, logger),
	}
}

// ExtractCustomers returns one candidate per source line, stably sorted by first name.
func ExtractCustomers(ctx context.Context, src source.Source) ([]CustomerCandidate, error) {
	var customers []CustomerCandidate
	err := source.Scan(ctx, src, source.FieldCountry+1, func(rec source.Record) error {
		first, last := models.SplitCustomerName(rec.Field(source.FieldCustomerName))
		customers = append(customers, CustomerCandidate{
			Line:      rec.Line,
			FirstName: first,
			LastName:  last,
			Address:   rec.Field(source.FieldAddress),
			City:      rec.Field(source.FieldCity),
			Country:   rec.Field(source.FieldCountry),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(customers, func(a, b CustomerCandidate) int {
		return cmp.Compare(a.FirstName, b.FirstName)
	})
	return customers, nil
}

func (s *CustomerStage) Execute(ctx context.Context, run *Run) error {
	var customers []CustomerCandidate
	return s.execute(ctx, run, stageWork{
		extract: func(ctx context.Context) (int, error) {
			var err error
			customers, err = ExtractCustomers(ctx, run.Source)
			return len(customers), err
		},
		resolve: func(ctx context.Context, tx database.Tx) ([][]any, error) {
			countries, err := LoadLookup(ctx, run, tx, StageCountry)
			if err != nil {
				return nil, err
			}
			rows := make([][]any, 0, len(customers))
			for _, c := range customers {
				countryID, err := countries.ResolveAt(c.Line, c.Country)
				if err != nil {
					return nil, err
				}
				rows = append(rows, models.Customer{
					FirstName: c.FirstName,
					LastName:  c.LastName,
					Address:   c.Address,
					City:      c.City,
					CountryID: countryID,
				}.Values())
			}
			return rows, nil
		},
	})
}
