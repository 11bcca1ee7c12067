package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/pqhint/domain"
	"github.com/ludo-technologies/pqhint/internal/constants"
	"github.com/ludo-technologies/pqhint/internal/logging"
)

const learnerDoc = `name: learner
actors:
  - name: Cat
    scripts:
      - event: GreenFlag
        body:
          - kind: GoToPos
            children: [{kind: MousePos, category: expression}]
`

const aliceDoc = `name: alice
actors:
  - name: Cat
    scripts:
      - event: GreenFlag
        body:
          - kind: Show
          - kind: GoToPos
            children: [{kind: MousePos, category: expression}]
`

const classResults = `projectname,test1,test2,test3,passed,failed,error,coverage
learner,pass,fail,fail,1,2,0,0.3
alice,pass,pass,pass,3,0,0,1.0
bob,pass,pass,pass,3,0,0,1.0
dave,fail,fail,fail,0,3,0,0.0
`

type recommendFixture struct {
	sources string
	targets string
	results string
}

func newRecommendFixture(t *testing.T) recommendFixture {
	t.Helper()
	root := t.TempDir()
	f := recommendFixture{
		sources: filepath.Join(root, "sources"),
		targets: filepath.Join(root, "targets"),
	}
	createTestFile(t, f.sources, "learner.yaml", learnerDoc)
	createTestFile(t, f.targets, "alice.yaml", aliceDoc)
	// bob has no project file
	f.results = createTestFile(t, root, "results.csv", classResults)
	return f
}

func (f recommendFixture) request(sources ...string) *domain.RecommendRequest {
	if len(sources) == 0 {
		sources = []string{f.sources}
	}
	return &domain.RecommendRequest{
		SourcePaths:        sources,
		TargetDir:          f.targets,
		ResultsPath:        f.results,
		Recursive:          true,
		MinPercentage:      constants.DefaultMinPercentage,
		P:                  constants.DefaultP,
		Q:                  constants.DefaultQ,
		Seed:               7,
		Markers:            constants.DefaultExcludedMarkers,
		IntermediateGroups: constants.IntermediateStrict,
		MaxGoroutines:      2,
		Timeout:            30 * time.Second,
	}
}

func newTestRecommendService(logger *slog.Logger) *RecommendServiceImpl {
	loader := NewProjectLoader(nil)
	return NewRecommendService(loader, NewFileReader(loader.Extensions()...), nil, logger)
}

func TestRecommendServiceOneAddedBlock(t *testing.T) {
	f := newRecommendFixture(t)
	var logs bytes.Buffer
	svc := newTestRecommendService(logging.NewLogger(&logs, slog.LevelDebug))

	response, err := svc.Recommend(context.Background(), f.request())
	require.NoError(t, err)
	require.Len(t, response.Projects, 1)

	project := response.Projects[0]
	assert.False(t, project.Failed(), project.Error)
	assert.Equal(t, "learner", project.ProjectName)
	assert.Equal(t, "alice", project.TargetName)
	assert.Equal(t, 1, project.Candidates)
	assert.Greater(t, project.Distance, 0.0)
	assert.Less(t, project.Distance, 1.0)

	require.Len(t, project.Recommendations, 1)
	row := project.Recommendations[0]
	assert.Equal(t, "learner", row.ProjectName)
	assert.Equal(t, "Cat", row.ActorName)
	assert.Equal(t, "script", row.BlockKind)
	assert.True(t, strings.HasPrefix(row.Block, "Show\n\nwhen GreenFlag\n"), row.Block)
	assert.Contains(t, row.Block, "GoToPos")
	assert.Equal(t, "Show0", row.AffectedBlock)
	assert.True(t, row.IsAddition)
	assert.Equal(t, []string{"*", "*"}, row.PreviousBlocks)
	assert.Equal(t, []string{"GoToPos0", "*"}, row.FollowingBlocks)

	assert.True(t, response.Success)
	assert.Equal(t, domain.RecommendStatistics{
		SourcesTotal:     1,
		SourcesSucceeded: 1,
		Recommendations:  1,
		Additions:        1,
	}, response.Statistics)
	assert.NotEmpty(t, response.GeneratedAt)
	assert.NotEmpty(t, response.Version)

	assert.Contains(t, logs.String(), "no suitable file for reference project")
	assert.Contains(t, logs.String(), "target=bob")
}

func TestRecommendServiceIdenticalReference(t *testing.T) {
	f := newRecommendFixture(t)
	createTestFile(t, f.targets, "alice.yaml", learnerDoc)

	response, err := newTestRecommendService(nil).Recommend(context.Background(), f.request())
	require.NoError(t, err)
	require.Len(t, response.Projects, 1)
	assert.Equal(t, 0.0, response.Projects[0].Distance)
	assert.Empty(t, response.Projects[0].Recommendations)
	assert.True(t, response.Success)
}

func TestRecommendServiceNoTargets(t *testing.T) {
	f := newRecommendFixture(t)
	req := f.request()
	createTestFile(t, f.targets, "alice.yaml", "name: alice\n")

	var logs bytes.Buffer
	svc := newTestRecommendService(logging.NewLogger(&logs, slog.LevelWarn))
	response, err := svc.Recommend(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, response.Projects, 1)
	project := response.Projects[0]
	assert.True(t, project.Failed())
	assert.Contains(t, project.Error, domain.ErrCodeNoTargets)
	assert.False(t, response.Success)
	assert.Equal(t, 1, response.Statistics.SourcesFailed)
	assert.Contains(t, logs.String(), "project=learner")
	assert.Contains(t, logs.String(), "skipping reference project")
}

func TestRecommendServiceSourceFailuresAreIsolated(t *testing.T) {
	f := newRecommendFixture(t)
	createTestFile(t, f.sources, "broken.yaml", "name: broken\nactors: [[[\n")

	response, err := newTestRecommendService(nil).Recommend(context.Background(), f.request())
	require.NoError(t, err)
	require.Len(t, response.Projects, 2)

	byName := map[string]domain.ProjectResult{}
	for _, p := range response.Projects {
		byName[filepath.Base(p.SourcePath)] = p
	}
	assert.True(t, byName["broken.yaml"].Failed())
	assert.False(t, byName["learner.yaml"].Failed())
	assert.Len(t, byName["learner.yaml"].Recommendations, 1)
	assert.Equal(t, 1, response.Statistics.SourcesFailed)
	assert.Equal(t, 1, response.Statistics.SourcesSucceeded)
}

func TestRecommendServiceSeedIsReproducibleAcrossBatch(t *testing.T) {
	root := t.TempDir()
	sources := filepath.Join(root, "sources")
	targets := filepath.Join(root, "targets")
	for i := 1; i <= 8; i++ {
		name := fmt.Sprintf("learner%02d", i)
		createTestFile(t, sources, name+".yaml", strings.Replace(learnerDoc, "name: learner", "name: "+name, 1))
	}
	// alice and carol are equally near every source
	createTestFile(t, targets, "alice.yaml", aliceDoc)
	createTestFile(t, targets, "carol.yaml", strings.Replace(aliceDoc, "name: alice", "name: carol", 1))
	results := createTestFile(t, root, "results.csv", `projectname,test1,passed,failed,error,coverage
alice,pass,1,0,0,1.0
carol,pass,1,0,0,1.0
`)

	f := recommendFixture{sources: sources, targets: targets, results: results}
	run := func() map[string]string {
		req := f.request()
		req.MaxGoroutines = 4
		response, err := newTestRecommendService(nil).Recommend(context.Background(), req)
		require.NoError(t, err)
		require.Len(t, response.Projects, 8)
		picked := make(map[string]string, len(response.Projects))
		for _, p := range response.Projects {
			require.False(t, p.Failed(), p.Error)
			picked[p.ProjectName] = p.TargetName
		}
		return picked
	}

	first := run()
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, run())
	}
}

func TestRecommendServiceResultsTableError(t *testing.T) {
	f := newRecommendFixture(t)
	req := f.request()
	req.ResultsPath = filepath.Join(t.TempDir(), "missing.csv")

	response, err := newTestRecommendService(nil).Recommend(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, response.Projects, 1)
	assert.Contains(t, response.Projects[0].Error, domain.ErrCodeResultsTable)
}

func TestRecommendServiceInvalidRequests(t *testing.T) {
	f := newRecommendFixture(t)
	empty := t.TempDir()

	tests := []struct {
		name   string
		modify func(*domain.RecommendRequest)
		code   string
	}{
		{"Bad window", func(r *domain.RecommendRequest) { r.Q = 0 }, domain.ErrCodeConfigError},
		{"Bad policy", func(r *domain.RecommendRequest) { r.IntermediateGroups = "guess" }, domain.ErrCodeConfigError},
		{"No sources", func(r *domain.RecommendRequest) { r.SourcePaths = []string{empty} }, domain.ErrCodeInvalidInput},
		{"Missing source", func(r *domain.RecommendRequest) { r.SourcePaths = []string{filepath.Join(empty, "x.sb3")} }, domain.ErrCodeFileNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.request()
			tt.modify(req)
			_, err := newTestRecommendService(nil).Recommend(context.Background(), req)
			require.Error(t, err)
			assert.True(t, domain.HasCode(err, tt.code), err.Error())
		})
	}
}

func TestRecommendServiceInjectedSelector(t *testing.T) {
	f := newRecommendFixture(t)
	svc := newTestRecommendService(nil)
	svc.SetTargetSelector(stubSelector{"alice.yaml"})

	req := f.request()
	req.ResultsPath = "unused.csv"
	response, err := svc.Recommend(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "alice", response.Projects[0].TargetName)
}

type stubSelector []string

func (s stubSelector) SelectTargets(string, string) ([]string, error) {
	return s, nil
}

func TestRecommendServiceDistance(t *testing.T) {
	f := newRecommendFixture(t)
	svc := newTestRecommendService(nil)
	source := filepath.Join(f.sources, "learner.yaml")
	target := filepath.Join(f.targets, "alice.yaml")

	same, err := svc.Distance(context.Background(), &domain.DistanceRequest{SourcePath: source, TargetPath: source})
	require.NoError(t, err)
	assert.Equal(t, 0.0, same.Distance)
	assert.Equal(t, 1.0, same.Similarity)
	assert.Equal(t, same.SourceTuples, same.SharedTuples)

	diff, err := svc.Distance(context.Background(), &domain.DistanceRequest{SourcePath: source, TargetPath: target})
	require.NoError(t, err)
	assert.Equal(t, "learner", diff.Source)
	assert.Equal(t, "alice", diff.Target)
	assert.Greater(t, diff.Distance, 0.0)
	assert.InDelta(t, 1.0, diff.Distance+diff.Similarity, 1e-9)
	assert.Less(t, diff.SharedTuples, diff.TargetTuples)

	_, err = svc.Distance(context.Background(), &domain.DistanceRequest{SourcePath: source, TargetPath: "nope.yaml"})
	assert.True(t, domain.HasCode(err, domain.ErrCodeFileNotFound))
}
