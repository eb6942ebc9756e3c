package metrics

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/joshuagi/Stabl/pkg/errors"
)

// ROCAUC computes the area under the ROC curve for binary labels (0/1) and
// real-valued scores. Ties in the scores receive mid-ranks.
func ROCAUC(yTrue, scores *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("ROCAUC", "empty vector")
	}
	if scores.Len() != n {
		return 0, errors.NewDimensionError("ROCAUC", n, scores.Len(), 0)
	}

	var nPos, nNeg int
	for i := 0; i < n; i++ {
		switch yTrue.AtVec(i) {
		case 1:
			nPos++
		case 0:
			nNeg++
		default:
			return 0, errors.NewValueError("ROCAUC", "labels must be 0 or 1")
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0, errors.NewValueError("ROCAUC", "both classes must be present")
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return scores.AtVec(order[a]) < scores.AtVec(order[b])
	})

	// Mann-Whitney U via mid-rank sums of the positive class.
	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && scores.AtVec(order[j]) == scores.AtVec(order[i]) {
			j++
		}
		midRank := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[order[k]] = midRank
		}
		i = j
	}

	var rankSum float64
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == 1 {
			rankSum += ranks[i]
		}
	}

	u := rankSum - float64(nPos)*float64(nPos+1)/2
	return u / (float64(nPos) * float64(nNeg)), nil
}

// Accuracy computes the fraction of correct 0/1 predictions after
// thresholding scores at 0.5.
func Accuracy(yTrue, scores *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("Accuracy", "empty vector")
	}
	if scores.Len() != n {
		return 0, errors.NewDimensionError("Accuracy", n, scores.Len(), 0)
	}

	var correct int
	for i := 0; i < n; i++ {
		pred := 0.0
		if scores.AtVec(i) >= 0.5 {
			pred = 1
		}
		if pred == yTrue.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}
