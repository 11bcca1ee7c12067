package main

import (
	"github.com/spf13/cobra"

	"github.com/ludo-technologies/pqhint/app"
	"github.com/ludo-technologies/pqhint/domain"
	"github.com/ludo-technologies/pqhint/service"
)

// DistanceCommand represents the distance command
type DistanceCommand struct {
	p      int
	q      int
	format string
}

// CreateCobraCommand creates the cobra command for profile distances
func (d *DistanceCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distance <source> <target>",
		Short: "Show the pq-gram distance of two projects",
		Long: `Compute the pq-gram distance between two projects.

A distance of 0 means the projects have the same block structure; names and
literal values are ignored. 1 means no pq-gram is shared.

Examples:
  pqhint distance learner.sb3 alice.sb3
  pqhint distance learner.sb3 alice.sb3 --format json`,
		Args: cobra.ExactArgs(2),
		RunE: d.runDistance,
	}

	cmd.Flags().IntVar(&d.p, "ancestors", 0, "Ancestor window length of pq-grams (default 2)")
	cmd.Flags().IntVar(&d.q, "siblings", 0, "Sibling window length of pq-grams (default 3)")
	cmd.Flags().StringVarP(&d.format, "format", "f", "text", "Output format: text, json or yaml")

	return cmd
}

func (d *DistanceCommand) runDistance(cmd *cobra.Command, args []string) error {
	format, err := domain.ParseOutputFormat(d.format)
	if err != nil {
		return err
	}

	loader := service.NewProjectLoader(nil)
	svc := service.NewRecommendService(loader, service.NewFileReader(loader.Extensions()...), nil, commandLogger(cmd))
	formatter := service.NewRecommendFormatter()
	useCase, err := app.NewRecommendUseCaseBuilder().
		WithService(svc).
		WithFormatter(formatter).
		WithOutputWriter(service.NewFileOutputWriter(cmd.ErrOrStderr())).
		Build()
	if err != nil {
		return err
	}

	response, err := useCase.Distance(cmd.Context(), domain.DistanceRequest{
		SourcePath: args[0],
		TargetPath: args[1],
		P:          d.p,
		Q:          d.q,
	})
	if err != nil {
		return err
	}
	return formatter.FormatDistance(response, format, cmd.OutOrStdout())
}

// NewDistanceCmd creates and returns the distance cobra command
func NewDistanceCmd() *cobra.Command {
	return (&DistanceCommand{}).CreateCobraCommand()
}
