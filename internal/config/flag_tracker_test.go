package config

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagTracker(t *testing.T) {
	ft := NewFlagTracker()
	assert.Equal(t, 0, ft.Count())
	assert.False(t, ft.WasSet("seed"))

	ft.Set("seed")
	ft.Set("seed")
	assert.True(t, ft.WasSet("seed"))
	assert.Equal(t, 1, ft.Count())
}

func TestNewFlagTrackerWithFlagsCopies(t *testing.T) {
	flags := map[string]bool{"q": true}
	ft := NewFlagTrackerWithFlags(flags)
	flags["p"] = true

	assert.True(t, ft.WasSet("q"))
	assert.False(t, ft.WasSet("p"))
}

func TestFlagTrackerMerge(t *testing.T) {
	ft := NewFlagTrackerWithFlags(map[string]bool{
		"format":         true,
		"q":              true,
		"seed":           true,
		"individual":     true,
		"min-percentage": true,
		"include":        true,
	})

	// set flags win even with zero values
	assert.Equal(t, "json", ft.MergeString("csv", "json", "format"))
	assert.Equal(t, 0, ft.MergeInt(3, 0, "q"))
	assert.Equal(t, uint64(0), ft.MergeUint64(7, 0, "seed"))
	assert.False(t, ft.MergeBool(true, false, "individual"))
	assert.Equal(t, 0.0, ft.MergeFloat64(90, 0, "min-percentage"))

	// unset flags keep the base
	assert.Equal(t, "csv", ft.MergeString("csv", "json", "output"))
	assert.Equal(t, 2, ft.MergeInt(2, 5, "p"))
	assert.Equal(t, "text", ft.MergeString("text", "", "config"))

	// empty slices never override
	assert.Equal(t, []string{"*.sb3"}, ft.MergeStringSlice([]string{"*.sb3"}, nil, "include"))
	assert.Equal(t, []string{"*.py"}, ft.MergeStringSlice([]string{"*.sb3"}, []string{"*.py"}, "include"))
	assert.Equal(t, []string{"*.sb3"}, ft.MergeStringSlice([]string{"*.sb3"}, []string{"*.py"}, "exclude"))
}

func TestFlagTrackerConcurrentAccess(t *testing.T) {
	ft := NewFlagTracker()
	names := []string{"ancestors", "siblings", "seed", "format"}

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := names[i%len(names)]
			ft.Set(name)
			_ = ft.WasSet(name)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, len(names), ft.Count())
}
