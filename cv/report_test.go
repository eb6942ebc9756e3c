package cv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJaccard(t *testing.T) {
	assert.Equal(t, 1.0, Jaccard([]string{"a", "b"}, []string{"b", "a"}))
	assert.Equal(t, 0.0, Jaccard([]string{"a"}, []string{"b"}))
	assert.InDelta(t, 1.0/3.0, Jaccard([]string{"a", "b"}, []string{"b", "c"}), 1e-12)
	assert.Equal(t, 1.0, Jaccard(nil, nil))
	assert.Equal(t, 0.0, Jaccard([]string{"a"}, nil))
}

func TestJaccardMatrixSymmetric(t *testing.T) {
	sel := [][]string{
		{"a", "b"},
		{"b", "c"},
		{"a", "b"},
	}
	m := JaccardMatrix(sel)

	r, c := m.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 3, c)
	for i := 0; i < 3; i++ {
		assert.Equal(t, 1.0, m.At(i, i))
		for j := 0; j < 3; j++ {
			assert.Equal(t, m.At(i, j), m.At(j, i))
		}
	}
	assert.Equal(t, 1.0, m.At(0, 2))
	assert.InDelta(t, 1.0/3.0, m.At(0, 1), 1e-12)
}

func TestMeanJaccard(t *testing.T) {
	m := JaccardMatrix([][]string{{"a"}, {"a"}, {"b"}})
	// Pairs: (0,1)=1, (0,2)=0, (1,2)=0 -> mean 1/3.
	assert.InDelta(t, 1.0/3.0, MeanJaccard(m), 1e-12)

	single := JaccardMatrix([][]string{{"a"}})
	assert.Equal(t, 1.0, MeanJaccard(single))
}
