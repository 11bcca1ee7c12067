package domain

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ludo-technologies/pqhint/internal/ast"
)

// RecommendRequest represents a request for edit recommendations
type RecommendRequest struct {
	// Input parameters
	SourcePaths     []string `json:"source_paths"`
	TargetDir       string   `json:"target_dir"`
	ResultsPath     string   `json:"results_path"`
	Recursive       bool     `json:"recursive"`
	IncludePatterns []string `json:"include_patterns"`
	ExcludePatterns []string `json:"exclude_patterns"`

	// Reference selection
	MinPercentage float64 `json:"min_percentage"`
	Individual    bool    `json:"individual"`

	// Engine configuration
	P                  int      `json:"p"`
	Q                  int      `json:"q"`
	Seed               uint64   `json:"seed"`
	Markers            []string `json:"markers"`
	IntermediateGroups string   `json:"intermediate_groups"`

	// Output configuration
	OutputFormat OutputFormat `json:"output_format"`
	OutputPath   string       `json:"output_path"`
	OutputWriter io.Writer    `json:"-"`

	// Execution
	MaxGoroutines int           `json:"max_goroutines"`
	Timeout       time.Duration `json:"timeout"`

	// Configuration file
	ConfigPath string `json:"config_path"`
}

// Validate validates the recommend request
func (req *RecommendRequest) Validate() error {
	if len(req.SourcePaths) == 0 {
		return NewValidationError("at least one source project is required (--path)")
	}
	if req.TargetDir == "" {
		return NewValidationError("reference folder is required (--target)")
	}
	if req.ResultsPath == "" {
		return NewValidationError("results table is required (--csv)")
	}
	if req.MinPercentage < 0 || req.MinPercentage > 100 {
		return NewValidationError(fmt.Sprintf("min percentage must be between 0 and 100, got %.2f", req.MinPercentage))
	}
	if req.P < 1 || req.Q < 1 {
		return NewValidationError(fmt.Sprintf("p and q must be positive, got p=%d q=%d", req.P, req.Q))
	}
	if _, err := ParseOutputFormat(string(req.OutputFormat)); err != nil {
		return err
	}
	if req.OutputPath == "" && req.OutputWriter == nil {
		return NewValidationError("an output file or writer is required")
	}
	if req.MaxGoroutines < 1 {
		return NewValidationError(fmt.Sprintf("max goroutines must be >= 1, got %d", req.MaxGoroutines))
	}
	return nil
}

// HasValidOutputWriter checks if the request has a valid output writer
func (req *RecommendRequest) HasValidOutputWriter() bool {
	return req.OutputWriter != nil
}

// RecommendationCSVHeader is the header row of CSV reports.
var RecommendationCSVHeader = []string{
	"project_name",
	"actor_name",
	"script/procedure",
	"affected_block",
	"is_addition",
	"previous blocks",
	"following blocks",
	"parent",
}

// RecommendationRow is one placement-qualified recommendation
type RecommendationRow struct {
	ProjectName     string   `json:"project_name" yaml:"project_name" csv:"project_name"`
	ActorName       string   `json:"actor_name" yaml:"actor_name" csv:"actor_name"`
	BlockKind       string   `json:"block_kind" yaml:"block_kind" csv:"-"`
	Block           string   `json:"block" yaml:"block" csv:"script/procedure"`
	AffectedBlock   string   `json:"affected_block" yaml:"affected_block" csv:"affected_block"`
	IsAddition      bool     `json:"is_addition" yaml:"is_addition" csv:"is_addition"`
	PreviousBlocks  []string `json:"previous_blocks" yaml:"previous_blocks" csv:"previous blocks"`
	FollowingBlocks []string `json:"following_blocks" yaml:"following_blocks" csv:"following blocks"`
	Parent          string   `json:"parent" yaml:"parent" csv:"parent"`
}

// CSVRecord returns the row in RecommendationCSVHeader order
func (r RecommendationRow) CSVRecord() []string {
	return []string{
		r.ProjectName,
		r.ActorName,
		r.Block,
		r.AffectedBlock,
		strconv.FormatBool(r.IsAddition),
		strings.Join(r.PreviousBlocks, ", "),
		strings.Join(r.FollowingBlocks, ", "),
		r.Parent,
	}
}

// Action returns "add" or "remove"
func (r RecommendationRow) Action() string {
	if r.IsAddition {
		return "add"
	}
	return "remove"
}

// ProjectResult holds the recommendations for one source project
type ProjectResult struct {
	ProjectName     string              `json:"project_name" yaml:"project_name"`
	SourcePath      string              `json:"source_path" yaml:"source_path"`
	TargetName      string              `json:"target_name,omitempty" yaml:"target_name,omitempty"`
	Distance        float64             `json:"distance" yaml:"distance"`
	Candidates      int                 `json:"candidates" yaml:"candidates"`
	Recommendations []RecommendationRow `json:"recommendations" yaml:"recommendations"`
	Error           string              `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the project could not be processed
func (p ProjectResult) Failed() bool {
	return p.Error != ""
}

// RecommendStatistics summarizes a run
type RecommendStatistics struct {
	SourcesTotal     int `json:"sources_total" yaml:"sources_total"`
	SourcesSucceeded int `json:"sources_succeeded" yaml:"sources_succeeded"`
	SourcesFailed    int `json:"sources_failed" yaml:"sources_failed"`
	Recommendations  int `json:"recommendations" yaml:"recommendations"`
	Additions        int `json:"additions" yaml:"additions"`
	Deletions        int `json:"deletions" yaml:"deletions"`
}

// RecommendResponse represents the response of a recommendation run
type RecommendResponse struct {
	Projects   []ProjectResult     `json:"projects" yaml:"projects"`
	Statistics RecommendStatistics `json:"statistics" yaml:"statistics"`

	// Metadata
	Duration    int64  `json:"duration_ms" yaml:"duration_ms"`
	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
	Version     string `json:"version" yaml:"version"`
	Success     bool   `json:"success" yaml:"success"`
}

// Rows returns the recommendations of all projects in order
func (r *RecommendResponse) Rows() []RecommendationRow {
	var rows []RecommendationRow
	for _, p := range r.Projects {
		rows = append(rows, p.Recommendations...)
	}
	return rows
}

// Summarize recomputes Statistics from Projects
func (r *RecommendResponse) Summarize() {
	stats := RecommendStatistics{SourcesTotal: len(r.Projects)}
	for _, p := range r.Projects {
		if p.Failed() {
			stats.SourcesFailed++
			continue
		}
		stats.SourcesSucceeded++
		for _, row := range p.Recommendations {
			stats.Recommendations++
			if row.IsAddition {
				stats.Additions++
			} else {
				stats.Deletions++
			}
		}
	}
	r.Statistics = stats
	r.Success = stats.SourcesFailed == 0
}

// DistanceRequest asks for the profile distance of two projects
type DistanceRequest struct {
	SourcePath string `json:"source_path"`
	TargetPath string `json:"target_path"`
	P          int    `json:"p"`
	Q          int    `json:"q"`
}

// DistanceResponse reports the profile distance of two projects
type DistanceResponse struct {
	Source       string  `json:"source" yaml:"source"`
	Target       string  `json:"target" yaml:"target"`
	Distance     float64 `json:"distance" yaml:"distance"`
	Similarity   float64 `json:"similarity" yaml:"similarity"`
	SourceTuples int     `json:"source_tuples" yaml:"source_tuples"`
	TargetTuples int     `json:"target_tuples" yaml:"target_tuples"`
	SharedTuples int     `json:"shared_tuples" yaml:"shared_tuples"`
}

// ProjectLoader loads a project file into a program tree
type ProjectLoader interface {
	// Load parses the project at path
	Load(ctx context.Context, path string) (*ast.Program, error)

	// Supports reports whether the loader understands the file
	Supports(path string) bool
}

// TargetSelector picks reference project names from a test results table
type TargetSelector interface {
	// SelectTargets returns eligible reference names for the given source
	SelectTargets(resultsPath, sourceName string) ([]string, error)
}

// ProjectCollector expands paths into project files
type ProjectCollector interface {
	CollectProjects(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error)
}

// RecommendService defines the interface for recommendation services
type RecommendService interface {
	// Recommend aligns every source project with its nearest reference
	Recommend(ctx context.Context, req *RecommendRequest) (*RecommendResponse, error)

	// Distance computes the profile distance of two projects
	Distance(ctx context.Context, req *DistanceRequest) (*DistanceResponse, error)
}

// RecommendConfigLoader merges configuration files into a request built
// from command line flags
type RecommendConfigLoader interface {
	LoadRequest(req *RecommendRequest) (*RecommendRequest, error)
}

// RecommendOutputFormatter formats recommendation results
type RecommendOutputFormatter interface {
	// Write formats response; header controls the CSV header row
	Write(response *RecommendResponse, format OutputFormat, writer io.Writer, header bool) error
}
