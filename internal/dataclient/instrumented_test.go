package dataclient

import (
	"context"
	"errors"
	"testing"

	"github.com/grameenmart/storefront/pkg/db/models"
	pkgerrors "github.com/grameenmart/storefront/pkg/errors"
	"github.com/grameenmart/storefront/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProducts struct {
	ProductClient
	err error
}

func (s stubProducts) GetAll(context.Context) ([]models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []models.Product{{ID: 1}}, nil
}

func (s stubProducts) Delete(context.Context, int64) error { return s.err }

func TestInstrumentedMapsRawFailuresToDependencyErrors(t *testing.T) {
	client := Instrument[models.Product, int64, models.ProductPatch](stubProducts{err: errors.New("disk gone")}, "localstore", ProductSchema, nil, nil)

	_, err := client.GetAll(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.Contains(t, err.Error(), "products getAll failed")
}

func TestInstrumentedKeepsTypedErrors(t *testing.T) {
	typed := pkgerrors.New(pkgerrors.CodeValidation, "bad input")
	client := Instrument[models.Product, int64, models.ProductPatch](stubProducts{err: typed}, "proxy", ProductSchema, nil, nil)

	err := client.Delete(context.Background(), 1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestInstrumentedRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewDataClientMetrics(reg)
	client := Instrument[models.Product, int64, models.ProductPatch](stubProducts{}, "direct", ProductSchema, nil, m)

	items, err := client.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)

	families, err := reg.Gather()
	require.NoError(t, err)
	var calls float64
	for _, mf := range families {
		if mf.GetName() != "data_client_calls_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			calls += metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 1.0, calls)
}
