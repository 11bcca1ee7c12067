package app

import (
	"context"
	"fmt"
	"io"

	"github.com/ludo-technologies/pqhint/domain"
)

// RecommendUseCase orchestrates one recommendation run: configuration,
// validation, the engine and report output.
type RecommendUseCase struct {
	service      domain.RecommendService
	formatter    domain.RecommendOutputFormatter
	configLoader domain.RecommendConfigLoader
	output       domain.ReportWriter
}

// NewRecommendUseCase creates a new recommend use case
func NewRecommendUseCase(
	service domain.RecommendService,
	formatter domain.RecommendOutputFormatter,
	configLoader domain.RecommendConfigLoader,
	output domain.ReportWriter,
) *RecommendUseCase {
	return &RecommendUseCase{
		service:      service,
		formatter:    formatter,
		configLoader: configLoader,
		output:       output,
	}
}

// Execute runs the workflow and writes the report. CSV reports are
// appended to, with a header only for a fresh file.
func (uc *RecommendUseCase) Execute(ctx context.Context, req domain.RecommendRequest) (*domain.RecommendResponse, error) {
	finalReq := &req
	if uc.configLoader != nil {
		loaded, err := uc.configLoader.LoadRequest(&req)
		if err != nil {
			return nil, err
		}
		finalReq = loaded
	}

	if err := finalReq.Validate(); err != nil {
		return nil, err
	}

	response, err := uc.service.Recommend(ctx, finalReq)
	if err != nil {
		return nil, err
	}

	mode := domain.WriteTruncate
	if finalReq.OutputFormat == domain.OutputFormatCSV {
		mode = domain.WriteAppend
	}

	err = uc.output.Write(finalReq.OutputWriter, finalReq.OutputPath, finalReq.OutputFormat, mode,
		func(w io.Writer, fresh bool) error {
			return uc.formatter.Write(response, finalReq.OutputFormat, w, fresh)
		})
	if err != nil {
		return response, err
	}

	return response, nil
}

// Distance compares two projects directly.
func (uc *RecommendUseCase) Distance(ctx context.Context, req domain.DistanceRequest) (*domain.DistanceResponse, error) {
	if req.SourcePath == "" || req.TargetPath == "" {
		return nil, domain.NewValidationError("both a source and a target project are required")
	}
	return uc.service.Distance(ctx, &req)
}

// RecommendUseCaseBuilder provides a builder pattern for creating RecommendUseCase
type RecommendUseCaseBuilder struct {
	service      domain.RecommendService
	formatter    domain.RecommendOutputFormatter
	configLoader domain.RecommendConfigLoader
	output       domain.ReportWriter
}

// NewRecommendUseCaseBuilder creates a new builder
func NewRecommendUseCaseBuilder() *RecommendUseCaseBuilder {
	return &RecommendUseCaseBuilder{}
}

// WithService sets the recommend service
func (b *RecommendUseCaseBuilder) WithService(service domain.RecommendService) *RecommendUseCaseBuilder {
	b.service = service
	return b
}

// WithFormatter sets the output formatter
func (b *RecommendUseCaseBuilder) WithFormatter(formatter domain.RecommendOutputFormatter) *RecommendUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithConfigLoader sets the configuration loader. Optional.
func (b *RecommendUseCaseBuilder) WithConfigLoader(loader domain.RecommendConfigLoader) *RecommendUseCaseBuilder {
	b.configLoader = loader
	return b
}

// WithOutputWriter sets the report writer
func (b *RecommendUseCaseBuilder) WithOutputWriter(output domain.ReportWriter) *RecommendUseCaseBuilder {
	b.output = output
	return b
}

// Build creates the RecommendUseCase with the configured dependencies
func (b *RecommendUseCaseBuilder) Build() (*RecommendUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("recommend service is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("output formatter is required")
	}
	if b.output == nil {
		return nil, fmt.Errorf("report writer is required")
	}
	return NewRecommendUseCase(b.service, b.formatter, b.configLoader, b.output), nil
}
