package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ludo-technologies/pqhint/domain"
	"github.com/ludo-technologies/pqhint/internal/analyzer"
	"github.com/ludo-technologies/pqhint/internal/ast"
	"github.com/ludo-technologies/pqhint/internal/logging"
	"github.com/ludo-technologies/pqhint/internal/pqgram"
	"github.com/ludo-technologies/pqhint/internal/provider"
	"github.com/ludo-technologies/pqhint/internal/render"
	"github.com/ludo-technologies/pqhint/internal/version"
)

type extensionLister interface {
	Extensions() []string
}

// RecommendServiceImpl implements domain.RecommendService
type RecommendServiceImpl struct {
	loader    domain.ProjectLoader
	collector domain.ProjectCollector
	selector  domain.TargetSelector // nil selects per request
	progress  domain.ProgressManager
	logger    *slog.Logger
}

// NewRecommendService creates a recommendation service. progress and
// logger may be nil.
func NewRecommendService(loader domain.ProjectLoader, collector domain.ProjectCollector, progress domain.ProgressManager, logger *slog.Logger) *RecommendServiceImpl {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &RecommendServiceImpl{
		loader:    loader,
		collector: collector,
		progress:  progress,
		logger:    logger,
	}
}

// SetTargetSelector overrides the results-table selector built from each
// request.
func (s *RecommendServiceImpl) SetTargetSelector(selector domain.TargetSelector) {
	s.selector = selector
}

// sourcePlan is one learner project with its resolved reference files.
type sourcePlan struct {
	path    string
	name    string
	targets []string
	err     error
}

// Recommend aligns every source project with its nearest reference project
// and synthesizes placement-qualified recommendations. Failures of single
// projects are logged and reported in their ProjectResult.
func (s *RecommendServiceImpl) Recommend(ctx context.Context, req *domain.RecommendRequest) (*domain.RecommendResponse, error) {
	startTime := time.Now()

	cfg := pqgram.Config{P: req.P, Q: req.Q, ExcludedMarkers: req.Markers}
	builder, err := pqgram.NewBuilder(cfg)
	if err != nil {
		return nil, domain.NewConfigError("invalid pq-gram configuration", err)
	}
	synthesizer, err := analyzer.NewSynthesizer(cfg, req.IntermediateGroups)
	if err != nil {
		return nil, domain.NewConfigError("invalid recommendation policy", err)
	}
	// profiles only; matching happens per source below
	generator := analyzer.NewEditsGenerator(builder, pqgram.NewMatcher(pqgram.FirstChooser{}))

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	sources, err := s.collector.CollectProjects(req.SourcePaths, req.Recursive, req.IncludePatterns, req.ExcludePatterns)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, domain.NewInvalidInputError("no source projects found in the provided paths", nil)
	}
	s.logger.Debug("collected source projects", "count", len(sources))

	plans, targetFiles := s.plan(req, sources)

	cache := PopulateParseCache(ctx, s.loader, generator, targetFiles, req.MaxGoroutines)
	for _, path := range targetFiles {
		if cached, ok := cache.Get(path); ok && cached.Err != nil {
			s.logger.Warn("skipping reference project", "path", path, "error", cached.Err)
		}
	}
	s.logger.Debug("loaded reference projects", "count", cache.Len())

	results := make([]domain.ProjectResult, len(plans))
	if s.progress != nil {
		s.progress.Initialize(len(plans))
		s.progress.Start()
		defer s.progress.Close()
	}

	var processed atomic.Int32
	tasks := make([]domain.ExecutableTask, len(plans))
	for i, plan := range plans {
		sourceGenerator := analyzer.NewEditsGenerator(builder, pqgram.NewMatcher(sourceChooser(req.Seed, i)))
		tasks[i] = NewSimpleTask(plan.name, true, func(ctx context.Context) (interface{}, error) {
			results[i] = s.processSource(ctx, plan, cache, sourceGenerator, synthesizer)
			if s.progress != nil {
				s.progress.Update(int(processed.Add(1)), len(plans))
			}
			return nil, nil
		})
	}

	executor := NewParallelExecutor()
	executor.SetMaxConcurrency(req.MaxGoroutines)
	executor.SetTimeout(req.Timeout)
	if err := executor.Execute(ctx, tasks); err != nil {
		if s.progress != nil {
			s.progress.Complete(false)
		}
		return nil, fmt.Errorf("recommendation run: %w", err)
	}

	response := &domain.RecommendResponse{
		Projects:    results,
		Duration:    time.Since(startTime).Milliseconds(),
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.Short(),
	}
	response.Summarize()

	if s.progress != nil {
		s.progress.Complete(response.Success)
	}
	return response, nil
}

// plan selects and resolves the reference files of every source. Files
// shared by several sources are listed once.
func (s *RecommendServiceImpl) plan(req *domain.RecommendRequest, sources []string) ([]sourcePlan, []string) {
	selector := s.selector
	if selector == nil {
		selector = NewTargetSelector(req.MinPercentage, req.Individual, s.logger)
	}
	extensions := provider.DefaultRegistry().Extensions()
	if lister, ok := s.loader.(extensionLister); ok {
		extensions = lister.Extensions()
	}

	plans := make([]sourcePlan, len(sources))
	var targetFiles []string
	seen := map[string]bool{}

	for i, source := range sources {
		plan := sourcePlan{path: source, name: provider.ProjectName(source)}

		names, err := selector.SelectTargets(req.ResultsPath, plan.name)
		if err != nil {
			plan.err = err
			plans[i] = plan
			continue
		}

		for _, name := range names {
			path, ok := ResolveTargetPath(req.TargetDir, name, extensions)
			if !ok {
				s.logger.Warn("no suitable file for reference project",
					"project", plan.name, "target", name, "dir", req.TargetDir)
				continue
			}
			if sameFile(path, source) {
				continue
			}
			plan.targets = append(plan.targets, path)
			if !seen[path] {
				seen[path] = true
				targetFiles = append(targetFiles, path)
			}
		}
		plans[i] = plan
	}
	return plans, targetFiles
}

func (s *RecommendServiceImpl) processSource(ctx context.Context, plan sourcePlan, cache *ParseCache, generator *analyzer.EditsGenerator, synthesizer *analyzer.Synthesizer) domain.ProjectResult {
	result := domain.ProjectResult{ProjectName: plan.name, SourcePath: plan.path}
	fail := func(msg string, err error) domain.ProjectResult {
		s.logger.Warn(msg, "project", plan.name, "error", err)
		result.Error = err.Error()
		return result
	}

	if plan.err != nil {
		return fail("failed to select reference projects", plan.err)
	}

	program, err := s.loader.Load(ctx, plan.path)
	if err != nil {
		return fail("failed to load source project", err)
	}
	result.ProjectName = program.Name

	var candidates []analyzer.Candidate
	for _, path := range plan.targets {
		if cached, ok := cache.Get(path); ok && cached.Err == nil && cached.Candidate.Program != nil {
			candidates = append(candidates, cached.Candidate)
		}
	}
	result.Candidates = len(candidates)
	if len(candidates) == 0 {
		return fail("no reference projects", domain.NewNoTargetsError(
			fmt.Sprintf("no reference project available for %s", plan.name)))
	}

	alignment, err := generator.Align(program, candidates)
	if err != nil {
		return fail("alignment failed", domain.NewAnalysisError("alignment failed", err))
	}
	result.TargetName = alignment.Target.Name
	result.Distance = alignment.Distance

	recommendations, err := synthesizer.Synthesize(alignment.Edits)
	if err != nil {
		if errors.Is(err, analyzer.ErrImpossibleEdit) {
			return fail("impossible edit", domain.NewImpossibleEditError(plan.name, err))
		}
		return fail("recommendation failed", domain.NewAnalysisError("recommendation failed", err))
	}

	result.Recommendations = make([]domain.RecommendationRow, 0, len(recommendations))
	for _, rec := range recommendations {
		result.Recommendations = append(result.Recommendations, recommendationRow(program.Name, rec))
	}
	s.logger.Debug("project processed", "project", plan.name, "target", result.TargetName,
		"distance", result.Distance, "recommendations", len(result.Recommendations))
	return result
}

// recommendationRow flattens a recommendation for reporting.
func recommendationRow(project string, rec analyzer.Recommendation) domain.RecommendationRow {
	kind := analyzer.BlockScript
	if rec.Procedure != nil {
		kind = analyzer.BlockProcedure
	}
	actor := ""
	if rec.Actor != nil {
		actor = rec.Actor.Name
	}
	return domain.RecommendationRow{
		ProjectName:     project,
		ActorName:       actor,
		BlockKind:       kind.String(),
		Block:           blockText(rec),
		AffectedBlock:   rec.Affected.Tag,
		IsAddition:      rec.IsAddition(),
		PreviousBlocks:  pqgram.Tags(rec.Previous),
		FollowingBlocks: pqgram.Tags(rec.Following),
		Parent:          rec.Parent.Tag,
	}
}

// blockText renders the affected block followed by its owning script or
// procedure.
func blockText(rec analyzer.Recommendation) string {
	var parts []string
	for _, n := range []*ast.Node{rec.Affected.Node, rec.Block()} {
		if text := strings.TrimRight(render.Render(n), "\n"); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Distance computes the profile distance of two projects.
func (s *RecommendServiceImpl) Distance(ctx context.Context, req *domain.DistanceRequest) (*domain.DistanceResponse, error) {
	cfg := pqgram.DefaultConfig()
	if req.P > 0 {
		cfg.P = req.P
	}
	if req.Q > 0 {
		cfg.Q = req.Q
	}
	builder, err := pqgram.NewBuilder(cfg)
	if err != nil {
		return nil, domain.NewConfigError("invalid pq-gram configuration", err)
	}

	source, err := s.loader.Load(ctx, req.SourcePath)
	if err != nil {
		return nil, err
	}
	target, err := s.loader.Load(ctx, req.TargetPath)
	if err != nil {
		return nil, err
	}

	a := builder.Build(source.Root)
	b := builder.Build(target.Root)
	return &domain.DistanceResponse{
		Source:       source.Name,
		Target:       target.Name,
		Distance:     pqgram.Distance(a, b),
		Similarity:   pqgram.Similarity(a, b),
		SourceTuples: a.Size(),
		TargetTuples: b.Size(),
		SharedTuples: a.IntersectionSize(b),
	}, nil
}

// sourceChooser returns the tie-breaker of the index-th source. A non-zero
// seed gives every source its own stream so results do not depend on
// scheduling.
func sourceChooser(seed uint64, index int) pqgram.Chooser {
	if seed == 0 {
		return pqgram.NewRandomChooser()
	}
	return pqgram.NewSeededChooser(seed + uint64(index))
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

var _ domain.RecommendService = (*RecommendServiceImpl)(nil)
