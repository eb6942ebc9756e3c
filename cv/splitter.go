// Package cv provides the outer cross-validation loop around the stability
// selector: fold generation (including grouped splits that never separate a
// subject's repeated measurements), per-fold preprocessing, selection, refit
// and evaluation, and fold-stability reporting.
package cv

import (
	"math"
	"math/rand/v2"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/joshuagi/Stabl/pkg/errors"
)

// Fold holds the row indices of one train/test split.
type Fold struct {
	Train []int
	Test  []int
}

// Splitter generates the outer folds. groups may be nil for ungrouped
// splitters; grouped splitters must keep every group on one side of each
// fold.
type Splitter interface {
	Split(n int, y *mat.VecDense, groups []string) ([]Fold, error)
	NSplits() int
}

// KFold is a plain k-fold splitter.
type KFold struct {
	K       int
	Shuffle bool
	Seed    int64
}

// NewKFold creates a k-fold splitter. k below 2 falls back to 5.
func NewKFold(k int, shuffle bool, seed int64) *KFold {
	if k < 2 {
		k = 5
	}
	return &KFold{K: k, Shuffle: shuffle, Seed: seed}
}

// NSplits returns the number of folds.
func (kf *KFold) NSplits() int { return kf.K }

// Split partitions [0, n) into K contiguous test blocks.
func (kf *KFold) Split(n int, _ *mat.VecDense, groups []string) ([]Fold, error) {
	if groups != nil {
		return nil, errors.NewValueError("KFold.Split",
			"KFold ignores groups; use GroupShuffleSplit for grouped data")
	}
	if n < kf.K {
		return nil, errors.NewValueError("KFold.Split", "more folds than samples")
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		r := rand.New(rand.NewPCG(uint64(kf.Seed), uint64(kf.Seed)))
		r.Shuffle(n, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]Fold, kf.K)
	foldSize := n / kf.K
	remainder := n % kf.K

	cur := 0
	for i := 0; i < kf.K; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}
		test := append([]int(nil), indices[cur:cur+testSize]...)
		train := make([]int, 0, n-testSize)
		train = append(train, indices[:cur]...)
		train = append(train, indices[cur+testSize:]...)
		sort.Ints(test)
		sort.Ints(train)
		folds[i] = Fold{Train: train, Test: test}
		cur += testSize
	}
	return folds, nil
}

// GroupShuffleSplit draws NIterations independent random splits at the group
// level: a fraction of the groups forms the test side and contributes all of
// its rows, so repeated measurements of one subject never leak across the
// boundary. With nil groups every row is its own group.
type GroupShuffleSplit struct {
	NIterations  int
	TestFraction float64
	Seed         int64
}

// NewGroupShuffleSplit creates a grouped shuffle splitter.
func NewGroupShuffleSplit(nIterations int, testFraction float64, seed int64) *GroupShuffleSplit {
	return &GroupShuffleSplit{NIterations: nIterations, TestFraction: testFraction, Seed: seed}
}

// NSplits returns the number of random splits.
func (gs *GroupShuffleSplit) NSplits() int { return gs.NIterations }

// Split generates the random group-level splits.
func (gs *GroupShuffleSplit) Split(n int, _ *mat.VecDense, groups []string) ([]Fold, error) {
	if gs.NIterations < 1 {
		return nil, errors.NewValueError("GroupShuffleSplit.Split", "n_iterations must be positive")
	}
	if gs.TestFraction <= 0 || gs.TestFraction >= 1 {
		return nil, errors.NewValueError("GroupShuffleSplit.Split", "test_fraction must lie in (0, 1)")
	}
	if groups != nil && len(groups) != n {
		return nil, errors.NewDimensionError("GroupShuffleSplit.Split", n, len(groups), 0)
	}

	order, rows := groupRows(n, groups)
	nGroups := len(order)
	nTest := int(math.Ceil(gs.TestFraction * float64(nGroups)))
	if nTest < 1 || nTest >= nGroups {
		return nil, errors.NewValueError("GroupShuffleSplit.Split",
			"test_fraction leaves an empty train or test side")
	}

	r := rand.New(rand.NewPCG(uint64(gs.Seed), uint64(gs.Seed)))
	folds := make([]Fold, gs.NIterations)
	for it := range folds {
		perm := r.Perm(nGroups)
		var test, train []int
		for k, gi := range perm {
			if k < nTest {
				test = append(test, rows[order[gi]]...)
			} else {
				train = append(train, rows[order[gi]]...)
			}
		}
		sort.Ints(test)
		sort.Ints(train)
		folds[it] = Fold{Train: train, Test: test}
	}
	return folds, nil
}

// LeaveOneOut generates one fold per sample.
type LeaveOneOut struct{ N int }

// NSplits returns the number of folds.
func (l *LeaveOneOut) NSplits() int { return l.N }

// Split generates n folds, each holding out one row.
func (l *LeaveOneOut) Split(n int, _ *mat.VecDense, groups []string) ([]Fold, error) {
	if groups != nil {
		return nil, errors.NewValueError("LeaveOneOut.Split", "LeaveOneOut ignores groups")
	}
	folds := make([]Fold, n)
	for i := range folds {
		train := make([]int, 0, n-1)
		for j := 0; j < n; j++ {
			if j != i {
				train = append(train, j)
			}
		}
		folds[i] = Fold{Train: train, Test: []int{i}}
	}
	l.N = n
	return folds, nil
}

// groupRows indexes rows by group, preserving first-seen order. With nil
// groups every row is its own group.
func groupRows(n int, groups []string) ([]string, map[string][]int) {
	rows := make(map[string][]int)
	var order []string
	if groups == nil {
		order = make([]string, n)
		for i := 0; i < n; i++ {
			key := strconv.Itoa(i)
			order[i] = key
			rows[key] = []int{i}
		}
		return order, rows
	}
	for i, g := range groups {
		if _, seen := rows[g]; !seen {
			order = append(order, g)
		}
		rows[g] = append(rows[g], i)
	}
	return order, rows
}
