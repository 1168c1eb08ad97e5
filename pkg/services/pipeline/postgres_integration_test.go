//go:build integration

package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-normalize/pkg/testhelpers"
)

func TestPipeline_Postgres(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	ctx := context.Background()

	p, err := NewDefault(zap.NewNop(), nil)
	require.NoError(t, err)

	// Run twice: the second run must recreate every table over the first.
	for i := 0; i < 2; i++ {
		_, err := p.Execute(ctx, NewRun(testDB.DB, export(sampleLines...), 3))
		require.NoError(t, err, "run %d", i+1)
	}

	assert.Equal(t, int64(2), countRows(t, testDB.DB, "region"))
	assert.Equal(t, int64(3), countRows(t, testDB.DB, "country"))
	assert.Equal(t, int64(4), countRows(t, testDB.DB, "customer"))
	assert.Equal(t, int64(2), countRows(t, testDB.DB, "productcategory"))
	assert.Equal(t, int64(4), countRows(t, testDB.DB, "product"))
	assert.Equal(t, int64(7), countRows(t, testDB.DB, "orderdetail"))

	assert.Equal(t, []string{"2023-01-15"}, queryStrings(t, testDB.DB,
		"SELECT to_char(orderdate, 'YYYY-MM-DD') FROM orderdetail ORDER BY orderid LIMIT 1"))
	assert.Equal(t, int64(1), queryInt(t, testDB.DB,
		"SELECT COUNT(DISTINCT customerid) FROM orderdetail WHERE orderdate BETWEEN '2023-03-01' AND '2023-03-31'"))
}
