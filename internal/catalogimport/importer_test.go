package catalogimport

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/grameenmart/storefront/pkg/db/models"
	"github.com/grameenmart/storefront/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

var importTime = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

const validCSV = `id,name,malayalamName,description,price,marketPrice,unit,category,inStock,image,imageUrl
101,Tomato,തക്കാളി,Fresh,40,55,kg,vegetable,true,,
,Banana,പഴം,,8,10,piece,fruit,,,
103,Jackfruit,ചക്ക,,250,300,piece,fruit,false,,
104,Curry Leaves,കറിവേപ്പില,,100,120,bunch,vegetable,true,,
`

type recordingWriter struct {
	got []models.Product
}

func (w *recordingWriter) SetAll(_ context.Context, products []models.Product) error {
	w.got = products
	return nil
}

func TestParseAppliesDefaultsAndIDs(t *testing.T) {
	products, err := Parse(strings.NewReader(validCSV), importTime)
	require.NoError(t, err)
	require.Len(t, products, 4)

	assert.Equal(t, int64(101), products[0].ID)
	assert.Equal(t, importTime.UnixMilli()+1, products[1].ID)
	assert.True(t, products[1].InStock)
	assert.False(t, products[2].InStock)
	assert.Equal(t, enums.ProductUnitBunch, products[3].Unit)
	assert.Equal(t, models.PlaceholderImage, products[0].Image)
}

func TestParseCollectsEveryRowError(t *testing.T) {
	input := `id,name,malayalamName,price,unit,category
1,,x,10,kg,vegetable
2,Okra,വെണ്ട,abc,litre,vegetable
3,Okra,വെണ്ട,10,kg,vegetable
`
	_, err := Parse(strings.NewReader(input), importTime)
	require.Error(t, err)
	errs := multierr.Errors(err)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "line 2")
	assert.Contains(t, errs[0].Error(), "name is required")
	assert.Contains(t, errs[1].Error(), "line 3")
	assert.Contains(t, errs[1].Error(), "price must be a positive number")
	assert.Contains(t, errs[1].Error(), "litre")
}

func TestImportWritesOnlyValidCatalog(t *testing.T) {
	writer := &recordingWriter{}
	products, err := Import(context.Background(), strings.NewReader(validCSV), writer, importTime)
	require.NoError(t, err)
	assert.Len(t, products, 4)
	assert.Equal(t, products, writer.got)

	writer = &recordingWriter{}
	_, err = Import(context.Background(), strings.NewReader("id,name,malayalamName,price\n1,,,0\n"), writer, importTime)
	require.Error(t, err)
	assert.Nil(t, writer.got)
}

func TestSummarizeBucketsPrices(t *testing.T) {
	products, err := Parse(strings.NewReader(validCSV), importTime)
	require.NoError(t, err)

	summary := Summarize(products)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.Vegetables)
	assert.Equal(t, 2, summary.Fruits)
	counts := map[string]int{}
	for _, r := range summary.Ranges {
		counts[r.Label] = r.Count
	}
	assert.Equal(t, map[string]int{"Under ₹50": 2, "₹50-₹100": 0, "₹100-₹200": 1, "Above ₹200": 1}, counts)

	var out bytes.Buffer
	require.NoError(t, summary.Write(&out))
	assert.Contains(t, out.String(), "Total Products: 4")
	assert.Contains(t, out.String(), "Jackfruit (ചക്ക) - ₹250/piece")
}
