package model

import (
	"errors"
	"fmt"
)

const leaf = -1

// Tree is one decision tree in the flat array layout used by scikit-learn's
// tree_ attribute. Node i is a leaf when ChildrenLeft[i] == -1; otherwise samples
// with x[Feature[i]] <= Threshold[i] go left.
type Tree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

// RandomForest averages the leaf class distributions of its trees.
type RandomForest struct {
	NFeatures int     `json:"n_features"`
	Classes   []int   `json:"classes"`
	Trees     []*Tree `json:"trees"`

	positive  int
	validated bool
}

// Validate checks the forest structure and resolves the positive class column.
func (f *RandomForest) Validate(nFeatures int) error {
	if f.NFeatures != nFeatures {
		return fmt.Errorf("classifier trained on %d features, expected %d", f.NFeatures, nFeatures)
	}
	if len(f.Trees) == 0 {
		return errors.New("classifier has no trees")
	}

	f.positive = -1
	for i, c := range f.Classes {
		if c == 1 {
			f.positive = i
		}
	}
	if f.positive < 0 {
		return fmt.Errorf("classifier classes %v have no positive class 1", f.Classes)
	}

	for i, t := range f.Trees {
		if err := t.validate(f.NFeatures, len(f.Classes)); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	f.validated = true
	return nil
}

func (t *Tree) validate(nFeatures, nClasses int) error {
	if t == nil {
		return errors.New("missing tree")
	}
	n := len(t.ChildrenLeft)
	if n == 0 {
		return errors.New("empty tree")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return errors.New("node arrays have different lengths")
	}
	for i := 0; i < n; i++ {
		if len(t.Value[i]) != nClasses {
			return fmt.Errorf("node %d has %d class values, expected %d", i, len(t.Value[i]), nClasses)
		}
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if l == leaf {
			if r != leaf {
				return fmt.Errorf("node %d has only one child", i)
			}
			continue
		}
		// Children always come after their parent, which also rules out cycles.
		if l <= i || l >= n || r <= i || r >= n {
			return fmt.Errorf("node %d has out of range children %d/%d", i, l, r)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= nFeatures {
			return fmt.Errorf("node %d splits on unknown feature %d", i, t.Feature[i])
		}
	}
	return nil
}

// PredictProba returns the mean probability of class 1 across all trees.
func (f *RandomForest) PredictProba(x []float64) (float64, error) {
	if !f.validated {
		return 0, fmt.Errorf("%w: classifier is not loaded", ErrInference)
	}
	if len(x) != f.NFeatures {
		return 0, fmt.Errorf("%w: classifier expects %d features, got %d", ErrInference, f.NFeatures, len(x))
	}

	var sum float64
	for _, t := range f.Trees {
		counts := t.Value[t.leafFor(x)]
		var total float64
		for _, c := range counts {
			total += c
		}
		if total > 0 {
			sum += counts[f.positive] / total
		}
	}
	return sum / float64(len(f.Trees)), nil
}

func (t *Tree) leafFor(x []float64) int {
	node := 0
	for t.ChildrenLeft[node] != leaf {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return node
}
