package vector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgapigen/pgapigen/dialect/sql"
	"github.com/pgapigen/pgapigen/vector"
)

func TestSearch_DistanceExpr(t *testing.T) {
	s := vector.Search{Column: "emb", Query: []float64{1, 0, 0}, Metric: vector.Cosine}
	require.NoError(t, s.Validate())

	q := sql.Build(func(b *sql.Builder) {
		b.WriteString("SELECT ")
		require.NoError(t, s.DistanceExpr(b))
		b.WriteString(" AS \"_distance\" FROM \"items\"")
	})
	assert.Contains(t, q.Query, `"emb" <=> $1`)
	assert.Equal(t, "[1,0,0]", q.Args[0])
}

func TestSearch_ThresholdPredicate(t *testing.T) {
	max := 0.2
	s := vector.Search{Column: "emb", Query: []float64{1, 0, 0}, Metric: vector.Cosine, MaxDistance: &max}
	pred := s.ThresholdPredicate()
	require.NotNil(t, pred)
	q := sql.Build(pred)
	assert.Contains(t, q.Query, "<=>")
	assert.Contains(t, q.Query, "<=")
	assert.Equal(t, 0.2, q.Args[1])
}

func TestSearch_ValidateRejectsEmptyVector(t *testing.T) {
	s := vector.Search{Column: "emb", Metric: vector.Cosine}
	assert.Error(t, s.Validate())
}

func TestSearch_ValidateRejectsUnknownMetric(t *testing.T) {
	s := vector.Search{Column: "emb", Query: []float64{1}, Metric: "manhattan"}
	assert.Error(t, s.Validate())
}
