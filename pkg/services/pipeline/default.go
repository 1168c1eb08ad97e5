package pipeline

import (
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-normalize/pkg/metrics"
)

// NewDefault returns the six-stage normalization pipeline.
func NewDefault(logger *zap.Logger, recorder *metrics.Recorder) (*Pipeline, error) {
	p := New(logger, recorder)
	stages := []Stage{
		NewRegionStage(logger),
		NewCountryStage(logger),
		NewCustomerStage(logger),
		NewProductCategoryStage(logger),
		NewProductStage(logger),
		NewOrderDetailStage(logger),
	}
	for _, s := range stages {
		if err := p.Register(s); err != nil {
			return nil, err
		}
	}
	if _, err := p.Order(); err != nil {
		return nil, err
	}
	return p, nil
}
