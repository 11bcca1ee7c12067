package domain

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() *RecommendRequest {
	req := DefaultRecommendRequest()
	req.SourcePaths = []string{"learner.sb3"}
	req.TargetDir = "solutions"
	req.ResultsPath = "results.csv"
	req.OutputPath = "hints.csv"
	return req
}

func TestDefaultRecommendRequest(t *testing.T) {
	req := DefaultRecommendRequest()

	assert.Equal(t, 2, req.P)
	assert.Equal(t, 3, req.Q)
	assert.Equal(t, 90.0, req.MinPercentage)
	assert.Equal(t, OutputFormatCSV, req.OutputFormat)
	assert.Equal(t, "best_effort", req.IntermediateGroups)
	assert.Equal(t, []string{"Metadata", "Literal", "StrId"}, req.Markers)
	assert.True(t, req.Recursive)
}

func TestRecommendRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RecommendRequest)
		wantErr string
	}{
		{"Valid", func(*RecommendRequest) {}, ""},
		{"Writer instead of file", func(r *RecommendRequest) { r.OutputPath = ""; r.OutputWriter = &bytes.Buffer{} }, ""},
		{"No sources", func(r *RecommendRequest) { r.SourcePaths = nil }, "--path"},
		{"No target folder", func(r *RecommendRequest) { r.TargetDir = "" }, "--target"},
		{"No results table", func(r *RecommendRequest) { r.ResultsPath = "" }, "--csv"},
		{"No output", func(r *RecommendRequest) { r.OutputPath = "" }, "output"},
		{"Percentage too high", func(r *RecommendRequest) { r.MinPercentage = 101 }, "min percentage"},
		{"Zero q", func(r *RecommendRequest) { r.Q = 0 }, "q=0"},
		{"Bad format", func(r *RecommendRequest) { r.OutputFormat = "html" }, "unsupported format"},
		{"No goroutines", func(r *RecommendRequest) { r.MaxGoroutines = 0 }, "goroutines"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			err := req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRecommendationRowCSVRecord(t *testing.T) {
	row := RecommendationRow{
		ProjectName:     "learner",
		ActorName:       "Cat",
		Block:           "when GreenFlag\nshow",
		AffectedBlock:   "MoveSteps0",
		IsAddition:      true,
		PreviousBlocks:  []string{"*", "Show0"},
		FollowingBlocks: []string{"Hide0", "*"},
		Parent:          "StmtList0",
	}

	record := row.CSVRecord()
	require.Len(t, record, len(RecommendationCSVHeader))
	assert.Equal(t, []string{
		"learner", "Cat", "when GreenFlag\nshow", "MoveSteps0", "true", "*, Show0", "Hide0, *", "StmtList0",
	}, record)
	assert.Equal(t, "add", row.Action())

	row.IsAddition = false
	assert.Equal(t, "false", row.CSVRecord()[4])
	assert.Equal(t, "remove", row.Action())
}

func TestRecommendResponseSummarize(t *testing.T) {
	resp := &RecommendResponse{
		Projects: []ProjectResult{
			{ProjectName: "a", Recommendations: []RecommendationRow{{IsAddition: true}, {IsAddition: false}, {IsAddition: true}}},
			{ProjectName: "b", Error: "no targets"},
			{ProjectName: "c"},
		},
	}

	resp.Summarize()

	assert.Equal(t, RecommendStatistics{
		SourcesTotal:     3,
		SourcesSucceeded: 2,
		SourcesFailed:    1,
		Recommendations:  3,
		Additions:        2,
		Deletions:        1,
	}, resp.Statistics)
	assert.False(t, resp.Success)
	assert.Len(t, resp.Rows(), 3)
}

func TestParseOutputFormat(t *testing.T) {
	for _, f := range []string{"csv", "json", "yaml", "text"} {
		got, err := ParseOutputFormat(f)
		require.NoError(t, err)
		assert.Equal(t, OutputFormat(f), got)
	}

	_, err := ParseOutputFormat("html")
	assert.True(t, HasCode(err, ErrCodeUnsupportedFormat))
}

func TestDomainErrors(t *testing.T) {
	cause := errors.New("boom")

	err := NewImpossibleEditError("learner", cause)
	assert.True(t, HasCode(err, ErrCodeImpossibleEdit))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[IMPOSSIBLE_EDIT] cannot place edits for project: learner: boom", err.Error())

	err = NewNoTargetsError("no reference project qualified")
	assert.True(t, HasCode(err, ErrCodeNoTargets))
	assert.False(t, HasCode(err, ErrCodeConfigError))
	assert.False(t, HasCode(cause, ErrCodeNoTargets))

	categorized := &CategorizedError{Category: ErrorCategoryInput, Original: err}
	assert.ErrorIs(t, categorized, err)
	assert.Equal(t, err.Error(), categorized.Error())
}
