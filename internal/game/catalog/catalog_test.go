package catalog

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChoice_ReturnsElement(t *testing.T) {
	t.Parallel()

	items := []string{"a", "b", "c"}
	for range 100 {
		assert.Contains(t, items, Choice(items))
	}
}

func TestChoice_SingleElement(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 42, Choice([]int{42}))
}

func TestChoice_CoversAllElements(t *testing.T) {
	t.Parallel()

	items := []int{0, 1, 2, 3}
	seen := make(map[int]bool)
	for range 1000 {
		seen[Choice(items)] = true
	}
	assert.Len(t, seen, len(items))
}

func TestChoice_EmptyPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { Choice([]string{}) })
}

func TestCharacters(t *testing.T) {
	t.Parallel()

	assert.Len(t, Characters, 20)

	seen := make(map[string]bool)
	for _, c := range Characters {
		assert.False(t, seen[c], "duplicate character %s", c)
		seen[c] = true
		assert.True(t, IsCharacter(c))
	}

	assert.False(t, IsCharacter("Dragon"))
	assert.False(t, IsCharacter(""))
	assert.False(t, IsCharacter("lion"), "character names are case sensitive")
}

func TestCategories(t *testing.T) {
	t.Parallel()

	assert.Len(t, Categories, 8)
	for name, words := range Categories {
		assert.Len(t, words, 12, "category %s", name)
	}
}

func TestCategoryNames_Sorted(t *testing.T) {
	t.Parallel()

	names := CategoryNames()
	require.Len(t, names, len(Categories))
	assert.True(t, slices.IsSorted(names))
}

func TestRandomSecret_BelongsToCategory(t *testing.T) {
	t.Parallel()

	for range 200 {
		category, secret := RandomSecret()
		words, ok := Categories[category]
		require.True(t, ok, "unknown category %s", category)
		assert.Contains(t, words, secret)
	}
}
