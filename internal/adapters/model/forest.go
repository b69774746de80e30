package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/baditaflorin/go_comment_classifier/internal/core/features"
)

// LeafNode marks a missing child in the array encoding of a tree.
const LeafNode = -1

// Tree is a fitted decision tree in array encoding: node i is a leaf when
// ChildrenLeft[i] == LeafNode, otherwise samples with x[Feature[i]] <= Threshold[i]
// go to ChildrenLeft[i] and the rest to ChildrenRight[i]. Value[i] holds the class
// distribution observed at node i.
type Tree struct {
	ChildrenLeft  []int
	ChildrenRight []int
	Feature       []int
	Threshold     []float64
	Value         [][]float64
}

// Forest averages the leaf class probabilities of its trees.
type Forest struct {
	Trees []Tree
	// PositiveClass is the column of Value holding the positive class.
	PositiveClass int
}

// Validate implements Estimator.
func (f *Forest) Validate(dim int) error {
	if len(f.Trees) == 0 {
		return errors.New("forest has no trees")
	}
	if f.PositiveClass < 0 {
		return fmt.Errorf("invalid positive class %d", f.PositiveClass)
	}
	for i := range f.Trees {
		if err := f.Trees[i].validate(dim, f.PositiveClass); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

// PredictProbability implements Estimator.
func (f *Forest) PredictProbability(x features.Vector) float64 {
	var sum float64
	for i := range f.Trees {
		sum += f.Trees[i].predict(x, f.PositiveClass)
	}
	return sum / float64(len(f.Trees))
}

func (t *Tree) validate(dim, class int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return errors.New("tree has no nodes")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return errors.New("node arrays differ in length")
	}
	for i := 0; i < n; i++ {
		left, right := t.ChildrenLeft[i], t.ChildrenRight[i]
		if left == LeafNode || right == LeafNode {
			if left != right {
				return fmt.Errorf("node %d has a single child", i)
			}
			if class >= len(t.Value[i]) {
				return fmt.Errorf("leaf %d has no value for class %d", i, class)
			}
			continue
		}
		// Children are stored after their parent in depth-first order.
		if left <= i || left >= n || right <= i || right >= n {
			return fmt.Errorf("node %d has children out of range", i)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= dim {
			return fmt.Errorf("node %d splits on feature %d outside [0, %d)", i, t.Feature[i], dim)
		}
		if math.IsNaN(t.Threshold[i]) {
			return fmt.Errorf("node %d has a NaN threshold", i)
		}
	}
	return nil
}

func (t *Tree) predict(x features.Vector, class int) float64 {
	node := 0
	for t.ChildrenLeft[node] != LeafNode {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}

	value := t.Value[node]
	var total float64
	for _, v := range value {
		total += v
	}
	if total <= 0 {
		return 0
	}
	return value[class] / total
}
