package pipeline

import (
	"cmp"
	"context"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-normalize/pkg/database"
	"github.com/ekaya-inc/ekaya-normalize/pkg/models"
	"github.com/ekaya-inc/ekaya-normalize/pkg/source"
)

// CountryCandidate is a distinct (country, region) pair from the source.
type CountryCandidate struct {
	Name   string
	Region string
}

// CountryStage fills the country table and references region.
type CountryStage struct {
	*BaseStage
}

// NewCountryStage creates the country stage.
func NewCountryStage(logger *zap.Logger) *CountryStage {
	return &CountryStage{
		BaseStage: NewBaseStage(StageCountry, models.CountryTable, []StageName{StageRegion}, logger),
	}
}

// ExtractCountries returns the distinct (country, region) pairs sorted by country then region.
func ExtractCountries(ctx context.Context, src source.Source) ([]CountryCandidate, error) {
	countries := NewCollector[CountryCandidate]()
	err := source.Scan(ctx, src, source.FieldRegion+1, func(rec source.Record) error {
		countries.Add(CountryCandidate{
			Name:   rec.Field(source.FieldCountry),
			Region: rec.Field(source.FieldRegion),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return countries.Sorted(func(a, b CountryCandidate) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.Region, b.Region))
	}), nil
}

func (s *CountryStage) Execute(ctx context.Context, run *Run) error {
	var countries []CountryCandidate
	return s.execute(ctx, run, stageWork{
		extract: func(ctx context.Context) (int, error) {
			var err error
			countries, err = ExtractCountries(ctx, run.Source)
			return len(countries), err
		},
		resolve: func(ctx context.Context, tx database.Tx) ([][]any, error) {
			regions, err := LoadLookup(ctx, run, tx, StageRegion)
			if err != nil {
				return nil, err
			}
			rows := make([][]any, 0, len(countries))
			for _, c := range countries {
				regionID, err := regions.Resolve(c.Region)
				if err != nil {
					return nil, err
				}
				rows = append(rows, models.Country{Name: c.Name, RegionID: regionID}.Values())
			}
			return rows, nil
		},
	})
}
