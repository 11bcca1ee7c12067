package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ludo-technologies/pqhint/domain"
)

type categoryPatterns struct {
	category domain.ErrorCategory
	patterns []string
}

// ErrorCategorizerImpl implements the ErrorCategorizer interface
type ErrorCategorizerImpl struct {
	codes    map[string]domain.ErrorCategory
	patterns []categoryPatterns
}

// NewErrorCategorizer creates a new error categorizer
func NewErrorCategorizer() domain.ErrorCategorizer {
	return &ErrorCategorizerImpl{
		codes:    initializeErrorCodes(),
		patterns: initializeErrorPatterns(),
	}
}

func initializeErrorCodes() map[string]domain.ErrorCategory {
	return map[string]domain.ErrorCategory{
		domain.ErrCodeInvalidInput:      domain.ErrorCategoryInput,
		domain.ErrCodeFileNotFound:      domain.ErrorCategoryInput,
		domain.ErrCodeConfigError:       domain.ErrorCategoryConfig,
		domain.ErrCodeResultsTable:      domain.ErrorCategorySelection,
		domain.ErrCodeNoTargets:         domain.ErrorCategorySelection,
		domain.ErrCodeParseError:        domain.ErrorCategoryProcessing,
		domain.ErrCodeAnalysisError:     domain.ErrorCategoryProcessing,
		domain.ErrCodeImpossibleEdit:    domain.ErrorCategoryProcessing,
		domain.ErrCodeOutputError:       domain.ErrorCategoryOutput,
		domain.ErrCodeUnsupportedFormat: domain.ErrorCategoryOutput,
	}
}

// initializeErrorPatterns lists message fragments for errors that carry no
// domain code. Earlier entries win.
func initializeErrorPatterns() []categoryPatterns {
	return []categoryPatterns{
		{domain.ErrorCategoryTimeout, []string{
			"timeout",
			"timed out",
			"deadline",
			"context canceled",
		}},
		{domain.ErrorCategorySelection, []string{
			"results table",
			"reference project",
			"projectname",
		}},
		{domain.ErrorCategoryConfig, []string{
			"config",
			"toml",
			"unknown flag",
			"required flag",
		}},
		{domain.ErrorCategoryInput, []string{
			"invalid input",
			"no source projects",
			"no such file",
			"file not found",
			"permission denied",
		}},
		{domain.ErrorCategoryOutput, []string{
			"write",
			"output",
			"cannot create",
		}},
		{domain.ErrorCategoryProcessing, []string{
			"parse",
			"syntax",
			"project.json",
			"alignment",
		}},
	}
}

// Categorize determines the category of an error
func (ec *ErrorCategorizerImpl) Categorize(err error) *domain.CategorizedError {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ec.categorized(domain.ErrorCategoryTimeout, err)
	}

	var de domain.DomainError
	if errors.As(err, &de) {
		if category, ok := ec.codes[de.Code]; ok {
			return ec.categorized(category, err)
		}
	}

	errMsg := strings.ToLower(err.Error())
	for _, entry := range ec.patterns {
		if containsAnyPattern(errMsg, entry.patterns) {
			return ec.categorized(entry.category, err)
		}
	}

	return &domain.CategorizedError{
		Category: domain.ErrorCategoryUnknown,
		Message:  err.Error(),
		Original: err,
	}
}

func (ec *ErrorCategorizerImpl) categorized(category domain.ErrorCategory, err error) *domain.CategorizedError {
	return &domain.CategorizedError{
		Category: category,
		Message:  ec.getCategoryMessage(category),
		Original: err,
	}
}

// GetRecoverySuggestions returns recovery suggestions for an error category
func (ec *ErrorCategorizerImpl) GetRecoverySuggestions(category domain.ErrorCategory) []string {
	suggestions := map[domain.ErrorCategory][]string{
		domain.ErrorCategoryInput: {
			"Check that --path names existing project files or folders",
			"Supported files: .sb3, project.json, .yaml/.yml/.json tree documents and .py",
			"Try: pqhint recommend --verbose to see which projects were collected",
		},
		domain.ErrorCategoryConfig: {
			"Verify configuration file format and values",
			"Try: pqhint init to generate a valid config file",
			"Check for syntax errors in .pqhint.toml or pyproject.toml",
		},
		domain.ErrorCategorySelection: {
			"Check that the results table starts with a projectname column",
			"The last columns must be passed, failed, error, optional skip and coverage",
			"Lower --min-percentage if no reference project qualifies",
			"Make sure reference files in --target are named after the results rows",
		},
		domain.ErrorCategoryTimeout: {
			"Increase timeout_seconds in the [performance] section",
			"Process fewer source projects per run",
		},
		domain.ErrorCategoryOutput: {
			"Check write permissions for the output file",
			"Ensure the output directory is writable",
		},
		domain.ErrorCategoryProcessing: {
			"Some projects may be corrupted or exported by an unsupported editor",
			"Try: pqhint show <project> to inspect how a project is parsed",
			"Use --intermediate-groups best_effort if edits cannot be placed",
		},
		domain.ErrorCategoryUnknown: {
			"Run with --verbose for detailed error information",
			"Report the issue if it persists",
		},
	}

	if sug, ok := suggestions[category]; ok {
		return sug
	}
	return []string{"Check the error message for more details"}
}

// getCategoryMessage returns a user-friendly message for an error category
func (ec *ErrorCategorizerImpl) getCategoryMessage(category domain.ErrorCategory) string {
	messages := map[domain.ErrorCategory]string{
		domain.ErrorCategoryInput:      "Failed to process input projects",
		domain.ErrorCategoryConfig:     "Configuration file or settings error",
		domain.ErrorCategorySelection:  "Failed to select reference projects",
		domain.ErrorCategoryTimeout:    "Recommendation run timed out",
		domain.ErrorCategoryOutput:     "Failed to generate or write output",
		domain.ErrorCategoryProcessing: "Error while comparing projects",
		domain.ErrorCategoryUnknown:    "An unexpected error occurred",
	}

	if msg, ok := messages[category]; ok {
		return msg
	}
	return "An error occurred"
}

// containsAnyPattern checks if a string contains any of the given patterns
func containsAnyPattern(str string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(str, pattern) {
			return true
		}
	}
	return false
}
