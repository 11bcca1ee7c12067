package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/ludo-technologies/pqhint/domain"
)

// RecommendFormatterImpl implements domain.RecommendOutputFormatter
type RecommendFormatterImpl struct{}

// NewRecommendFormatter creates a new recommendation formatter
func NewRecommendFormatter() *RecommendFormatterImpl {
	return &RecommendFormatterImpl{}
}

// Write writes response in the given format. header is only meaningful for
// CSV, where rows are appended to an existing report.
func (f *RecommendFormatterImpl) Write(response *domain.RecommendResponse, format domain.OutputFormat, writer io.Writer, header bool) error {
	switch format {
	case domain.OutputFormatCSV:
		return f.writeCSV(response, writer, header)
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, response)
	case domain.OutputFormatText:
		_, err := io.WriteString(writer, f.formatText(response))
		if err != nil {
			return domain.NewOutputError("failed to write output", err)
		}
		return nil
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

func (f *RecommendFormatterImpl) writeCSV(response *domain.RecommendResponse, writer io.Writer, header bool) error {
	w := csv.NewWriter(writer)
	if header {
		if err := w.Write(domain.RecommendationCSVHeader); err != nil {
			return domain.NewOutputError("failed to write CSV header", err)
		}
	}
	for _, row := range response.Rows() {
		if err := w.Write(row.CSVRecord()); err != nil {
			return domain.NewOutputError("failed to write CSV row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return domain.NewOutputError("failed to flush CSV", err)
	}
	return nil
}

func (f *RecommendFormatterImpl) formatText(response *domain.RecommendResponse) string {
	var b strings.Builder
	utils := NewFormatUtils()

	b.WriteString(utils.FormatMainHeader("Edit Recommendations"))

	for _, project := range response.Projects {
		b.WriteString(utils.FormatSectionHeader(project.ProjectName))
		if project.Failed() {
			b.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Error", utils.FormatFailure(project.Error)))
			b.WriteString("\n")
			continue
		}
		b.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Reference", project.TargetName))
		b.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Distance", fmt.Sprintf("%.4f", project.Distance)))
		b.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Candidates", project.Candidates))
		if len(project.Recommendations) == 0 {
			b.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Recommendations", "none"))
		}

		for i, row := range project.Recommendations {
			fmt.Fprintf(&b, "\n  %d. %s %s in %s of %s (parent %s)\n",
				i+1, utils.FormatAction(row.IsAddition), row.AffectedBlock, row.BlockKind, row.ActorName, row.Parent)
			b.WriteString(utils.FormatLabelWithIndent(ItemPadding, "after", strings.Join(row.PreviousBlocks, ", ")))
			b.WriteString(utils.FormatLabelWithIndent(ItemPadding, "before", strings.Join(row.FollowingBlocks, ", ")))
			b.WriteString(utils.Indent(row.Block, ItemPadding+2))
		}
		b.WriteString("\n")
	}

	stats := response.Statistics
	b.WriteString(utils.FormatSectionHeader("Summary"))
	b.WriteString(utils.FormatLabel("Sources", stats.SourcesTotal))
	b.WriteString(utils.FormatLabel("Failed", stats.SourcesFailed))
	b.WriteString(utils.FormatLabel("Recommendations", stats.Recommendations))
	b.WriteString(utils.FormatLabel("Additions", stats.Additions))
	b.WriteString(utils.FormatLabel("Deletions", stats.Deletions))
	b.WriteString(utils.FormatLabel("Duration", utils.FormatDuration(response.Duration)))
	return b.String()
}

// FormatDistance writes a distance report.
func (f *RecommendFormatterImpl) FormatDistance(response *domain.DistanceResponse, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, response)
	case domain.OutputFormatText, domain.OutputFormatCSV:
		utils := NewFormatUtils()
		var b strings.Builder
		b.WriteString(utils.FormatLabel("Source", response.Source))
		b.WriteString(utils.FormatLabel("Target", response.Target))
		b.WriteString(utils.FormatLabel("Distance", fmt.Sprintf("%.4f", response.Distance)))
		b.WriteString(utils.FormatLabel("Similarity", fmt.Sprintf("%.4f", response.Similarity)))
		b.WriteString(utils.FormatLabel("Shared tuples", fmt.Sprintf("%d of %d/%d", response.SharedTuples, response.SourceTuples, response.TargetTuples)))
		if _, err := io.WriteString(writer, b.String()); err != nil {
			return domain.NewOutputError("failed to write output", err)
		}
		return nil
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

var _ domain.RecommendOutputFormatter = (*RecommendFormatterImpl)(nil)
