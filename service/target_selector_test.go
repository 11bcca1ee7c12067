package service

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/pqhint/domain"
)

const whiskerResults = `projectname,test1,test2,test3,passed,failed,error,skip,coverage
alice,pass,pass,pass,3,0,0,0,1.0
bob,pass,fail,pass,2,1,0,0,0.8
carol,pass,pass,fail,2,1,0,0,0.8
dave,fail,fail,fail,0,3,0,0,0.1
eve,pass,pass,skip,2,0,0,1,0.9
zed,,,,0,0,0,0,0
`

func writeResults(t *testing.T, content string) string {
	t.Helper()
	return createTestFile(t, t.TempDir(), "results.csv", content)
}

func TestParseResultsTable(t *testing.T) {
	table, err := parseResultsTable(strings.NewReader(whiskerResults))
	require.NoError(t, err)

	assert.True(t, table.HasSkip)
	assert.Equal(t, []string{"test1", "test2", "test3"}, table.Tests)
	require.Len(t, table.Rows, 6)

	eve, ok := table.Find("eve")
	require.True(t, ok)
	assert.Equal(t, ResultRow{
		Name:     "eve",
		Outcomes: []string{"pass", "pass", "skip"},
		Passed:   2,
		Skip:     1,
		Coverage: 0.9,
	}, eve)
	assert.Equal(t, 3, eve.Total())

	zed, _ := table.Find("zed")
	_, ok = zed.PassRatio()
	assert.False(t, ok)
}

func TestResultsTableByPercentage(t *testing.T) {
	table, err := parseResultsTable(strings.NewReader(whiskerResults))
	require.NoError(t, err)

	tests := []struct {
		name      string
		threshold float64
		source    string
		want      []string
	}{
		{"Default threshold", 90, "someone", []string{"alice"}},
		{"Lower threshold", 60, "someone", []string{"alice", "bob", "carol", "eve"}},
		{"Source excluded", 60, "bob", []string{"alice", "carol", "eve"}},
		{"Zero threshold skips rows without tests", 0, "someone", []string{"alice", "bob", "carol", "dave", "eve"}},
		{"Nothing qualifies", 100, "alice", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.ByPercentage(tt.threshold, tt.source))
		})
	}
}

func TestResultsTableIndividuallyBetter(t *testing.T) {
	table, err := parseResultsTable(strings.NewReader(whiskerResults))
	require.NoError(t, err)

	names, ok := table.IndividuallyBetter("bob")
	require.True(t, ok)
	assert.Equal(t, []string{"alice"}, names)

	names, ok = table.IndividuallyBetter("dave")
	require.True(t, ok)
	assert.Equal(t, []string{"alice", "bob", "carol", "eve"}, names)

	_, ok = table.IndividuallyBetter("ghost")
	assert.False(t, ok)
}

func TestTargetSelectorSelectTargets(t *testing.T) {
	path := writeResults(t, whiskerResults)

	tests := []struct {
		name       string
		percentage float64
		individual bool
		source     string
		want       []string
	}{
		{"Percentage mode", 60, false, "carol", []string{"alice", "bob", "eve"}},
		{"Default percentage", -1, false, "x", []string{"alice"}},
		{"Individual mode", 60, true, "bob", []string{"alice"}},
		{"Individual falls back when nobody is better", 60, true, "alice", []string{"bob", "carol", "eve"}},
		{"Individual falls back for unknown source", 90, true, "ghost", []string{"alice"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selector := NewTargetSelector(tt.percentage, tt.individual, nil)
			got, err := selector.SelectTargets(path, tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTargetSelectorWithoutSkipColumn(t *testing.T) {
	path := writeResults(t, "projektname,passed,failed,error,coverage\nfoo,9,1,0,100%\nbar,8,2,0,80%\n")

	table, err := ReadResultsTable(path)
	require.NoError(t, err)
	assert.False(t, table.HasSkip)
	assert.Empty(t, table.Tests)

	foo, _ := table.Find("foo")
	assert.Equal(t, 100.0, foo.Coverage)

	got, err := NewTargetSelector(90, false, nil).SelectTargets(path, "bar")
	require.NoError(t, err)
	assert.Equal(t, []string{"foo"}, got)
}

func TestTargetSelectorErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"Missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "none.csv") }},
		{"Bad count", func(t *testing.T) string { return writeResults(t, "projectname,passed,failed,error,coverage\na,x,0,0,1\n") }},
		{"Too few columns", func(t *testing.T) string { return writeResults(t, "a,1,2\n") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTargetSelector(90, false, nil).SelectTargets(tt.path(t), "a")
			require.Error(t, err)
			assert.True(t, domain.HasCode(err, domain.ErrCodeResultsTable))
		})
	}
}
