package ltest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestCheckRunsCleanupsPerIteration(t *testing.T) {
	iterations, cleaned := 0, 0
	Check(t, func(rt *rapid.T, ft T) {
		n := rapid.IntRange(1, 5).Draw(rt, "n")
		var order []int
		for i := 0; i < n; i++ {
			i := i
			ft.Cleanup(func() {
				order = append(order, i)
				if len(order) == n {
					cleaned++
					for j, v := range order {
						if v != n-1-j {
							rt.Fatalf("cleanups ran out of order: %v", order)
						}
					}
				}
			})
		}
		iterations++
	})
	assert.Positive(t, iterations)
	assert.Equal(t, iterations, cleaned)
}
