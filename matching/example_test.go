package matching_test

import (
	"context"
	"fmt"

	"github.com/katalvlaran/rotapair/history"
	"github.com/katalvlaran/rotapair/matching"
)

// ExampleSolveMatching pairs four people, keeping the two who met recently apart.
func ExampleSolveMatching() {
	weights := history.WeightMap[string]{
		history.MustPair("ann", "ben"): 0, // met last week
		history.MustPair("ann", "cat"): 3,
		history.MustPair("ann", "dan"): 2,
		history.MustPair("ben", "cat"): 2,
		history.MustPair("ben", "dan"): 3,
		history.MustPair("cat", "dan"): 1,
	}
	pairs, err := matching.SolveMatching(context.Background(),
		[]string{"ann", "ben", "cat", "dan"}, weights, matching.DefaultSolver())
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(pairs)
	// Output:
	// [(ann, cat) (ben, dan)]
}
