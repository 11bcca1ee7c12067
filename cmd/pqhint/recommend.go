package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/pqhint/app"
	"github.com/ludo-technologies/pqhint/domain"
	"github.com/ludo-technologies/pqhint/internal/constants"
	"github.com/ludo-technologies/pqhint/service"
)

const recommendExample = `pqhint recommend --path sources/learner.sb3 --target references --csv results.csv --output hints.csv`

// RecommendCommand represents the recommend command
type RecommendCommand struct {
	paths              []string
	target             string
	resultsPath        string
	outputPath         string
	minPercentage      float64
	individual         bool
	seed               uint64
	p                  int
	q                  int
	intermediateGroups string
	format             string
	configFile         string
	includePatterns    []string
	excludePatterns    []string
	recursive          bool
	maxGoroutines      int
}

// NewRecommendCommand creates a new recommend command
func NewRecommendCommand() *RecommendCommand {
	return &RecommendCommand{
		minPercentage:      constants.DefaultMinPercentage,
		p:                  constants.DefaultP,
		q:                  constants.DefaultQ,
		intermediateGroups: constants.IntermediateBestEffort,
		recursive:          true,
		maxGoroutines:      4,
	}
}

// CreateCobraCommand creates the cobra command for recommendations
func (c *RecommendCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend block edits towards better reference projects",
		Long: `Recommend edits for one or more learner projects.

For every source project the results table selects reference projects that
pass more tests. The nearest reference by pq-gram distance is aligned actor by
actor and block by block, and each difference is reported as a block to add or
remove together with its parent and neighbouring blocks.

CSV reports are appended to, so several runs can share one file.

Examples:
  # One learner project
  ` + recommendExample + `

  # A whole class, references must pass every test the learner passes
  pqhint recommend -p sources -t references -c results.csv -o hints.csv --individual

  # Human readable output on stdout
  pqhint recommend -p learner.sb3 -t references -c results.csv --format text`,
		RunE: c.runRecommend,
	}

	cmd.Flags().StringSliceVarP(&c.paths, "path", "p", nil, "Source project file or folder (repeatable)")
	cmd.Flags().StringVarP(&c.target, "target", "t", "", "Folder with reference projects")
	cmd.Flags().StringVarP(&c.resultsPath, "csv", "c", "", "Test results table")
	cmd.Flags().StringVarP(&c.outputPath, "output", "o", "", "Report file (stdout when omitted with --format)")
	cmd.Flags().Float64VarP(&c.minPercentage, "min-percentage", "m", c.minPercentage, "Minimum percentage of passed tests for references")
	cmd.Flags().BoolVarP(&c.individual, "individual", "i", false, "Require references to pass every test the source passes")
	cmd.Flags().Uint64Var(&c.seed, "seed", 0, "Tie-break seed (0 picks randomly)")
	cmd.Flags().IntVar(&c.p, "ancestors", c.p, "Ancestor window length of pq-grams")
	cmd.Flags().IntVar(&c.q, "siblings", c.q, "Sibling window length of pq-grams")
	cmd.Flags().StringVar(&c.intermediateGroups, "intermediate-groups", c.intermediateGroups, "Handling of partial edit groups: best_effort or strict")
	cmd.Flags().StringVarP(&c.format, "format", "f", "", "Output format: csv, json, yaml or text")
	cmd.Flags().StringVar(&c.configFile, "config", "", "Configuration file path")
	cmd.Flags().StringSliceVar(&c.includePatterns, "include", nil, "Include source file patterns")
	cmd.Flags().StringSliceVar(&c.excludePatterns, "exclude", nil, "Exclude source file patterns")
	cmd.Flags().BoolVarP(&c.recursive, "recursive", "r", true, "Search source folders recursively")
	cmd.Flags().IntVar(&c.maxGoroutines, "max-goroutines", c.maxGoroutines, "Maximum number of projects processed in parallel")

	return cmd
}

// checkRequired prints usage and a runnable example when inputs are missing.
func (c *RecommendCommand) checkRequired(cmd *cobra.Command) error {
	var missing []string
	if len(c.paths) == 0 {
		missing = append(missing, "--path")
	}
	if c.target == "" {
		missing = append(missing, "--target")
	}
	if c.resultsPath == "" {
		missing = append(missing, "--csv")
	}
	if c.outputPath == "" && c.format == "" {
		missing = append(missing, "--output")
	}
	if len(missing) == 0 {
		return nil
	}

	fmt.Fprintln(cmd.ErrOrStderr(), cmd.UsageString())
	fmt.Fprintf(cmd.ErrOrStderr(), "Example:\n  %s\n\n", recommendExample)
	return domain.NewValidationError("required flag(s) not set: " + strings.Join(missing, ", "))
}

func (c *RecommendCommand) buildRequest(cmd *cobra.Command) (domain.RecommendRequest, error) {
	req := domain.RecommendRequest{
		SourcePaths:        c.paths,
		TargetDir:          c.target,
		ResultsPath:        c.resultsPath,
		Recursive:          c.recursive,
		IncludePatterns:    c.includePatterns,
		ExcludePatterns:    c.excludePatterns,
		MinPercentage:      c.minPercentage,
		Individual:         c.individual,
		P:                  c.p,
		Q:                  c.q,
		Seed:               c.seed,
		IntermediateGroups: c.intermediateGroups,
		OutputPath:         c.outputPath,
		MaxGoroutines:      c.maxGoroutines,
		ConfigPath:         c.configFile,
	}

	if c.format != "" {
		format, err := service.NewOutputFormatResolver().Determine(c.format, c.outputPath)
		if err != nil {
			return req, err
		}
		req.OutputFormat = format
	}
	if c.outputPath == "" {
		req.OutputWriter = cmd.OutOrStdout()
	}
	return req, nil
}

// runRecommend executes the recommend command
func (c *RecommendCommand) runRecommend(cmd *cobra.Command, args []string) error {
	if err := c.checkRequired(cmd); err != nil {
		return err
	}

	req, err := c.buildRequest(cmd)
	if err != nil {
		return err
	}

	logger := commandLogger(cmd)
	loader := service.NewProjectLoader(nil)

	var progress domain.ProgressManager
	quiet, _ := cmd.Flags().GetBool("quiet")
	if !quiet && service.IsInteractiveEnvironment() {
		progress = service.NewProgressManager()
		progress.SetWriter(cmd.ErrOrStderr())
	}

	svc := service.NewRecommendService(loader, service.NewFileReader(loader.Extensions()...), progress, logger)
	useCase, err := app.NewRecommendUseCaseBuilder().
		WithService(svc).
		WithFormatter(service.NewRecommendFormatter()).
		WithConfigLoader(service.NewConfigurationLoader(GetExplicitFlags(cmd))).
		WithOutputWriter(service.NewFileOutputWriter(cmd.ErrOrStderr())).
		Build()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	response, err := useCase.Execute(ctx, req)
	if err != nil {
		return err
	}

	stats := response.Statistics
	logger.Info("recommendation run finished",
		"sources", stats.SourcesTotal,
		"failed", stats.SourcesFailed,
		"recommendations", stats.Recommendations,
		"duration_ms", response.Duration)
	if stats.SourcesTotal > 0 && stats.SourcesFailed == stats.SourcesTotal {
		return domain.NewAnalysisError(fmt.Sprintf("no recommendations could be made for %d project(s)", stats.SourcesTotal), nil)
	}
	return nil
}

// NewRecommendCmd creates and returns the recommend cobra command
func NewRecommendCmd() *cobra.Command {
	return NewRecommendCommand().CreateCobraCommand()
}

