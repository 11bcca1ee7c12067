package domain

import (
	"time"

	"github.com/ludo-technologies/pqhint/internal/constants"
)

// ============================================================================
// Recommendation Defaults
// ============================================================================

const (
	// DefaultMaxGoroutines is the default number of concurrent goroutines.
	DefaultMaxGoroutines = 4

	// DefaultTimeoutSeconds is the default timeout in seconds for one run.
	DefaultTimeoutSeconds = 300

	// DefaultOutputFormat is used for report files.
	DefaultOutputFormat = OutputFormatCSV
)

// DefaultIncludePatterns are the project files picked up from folders.
var DefaultIncludePatterns = []string{"*.sb3", "*.json", "*.yaml", "*.yml", "*.py"}

// DefaultRecommendRequest returns a default recommend request
func DefaultRecommendRequest() *RecommendRequest {
	return &RecommendRequest{
		Recursive:          true,
		IncludePatterns:    append([]string(nil), DefaultIncludePatterns...),
		ExcludePatterns:    []string{},
		MinPercentage:      constants.DefaultMinPercentage,
		Individual:         false,
		P:                  constants.DefaultP,
		Q:                  constants.DefaultQ,
		Markers:            append([]string(nil), constants.DefaultExcludedMarkers...),
		IntermediateGroups: constants.IntermediateBestEffort,
		OutputFormat:       DefaultOutputFormat,
		MaxGoroutines:      DefaultMaxGoroutines,
		Timeout:            DefaultTimeoutSeconds * time.Second,
	}
}
