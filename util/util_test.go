package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetKeysSorted(t *testing.T) {
	m := map[string]int{"b": 2, "a": 1, "c": 3}
	assert.Equal(t, []string{"a", "b", "c"}, GetKeysSorted(m))
}

func TestGetKeys(t *testing.T) {
	m := map[int]string{4: "d", 2: "b"}
	assert.ElementsMatch(t, []int{2, 4}, GetKeys(m))
}

func TestMinMax(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(1, Min(1, 2))
	assert.Equal(1, Min(2, 1))
	assert.Equal(2, Max(1, 2))
	assert.Equal(2, Max(2, 1))
}

func TestSum(t *testing.T) {
	assert.Equal(t, uint64(6), Sum([]int{1, 2, 3}))
	assert.Equal(t, uint64(0), Sum([]int(nil)))
}
