package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ludo-technologies/pqhint/domain"
	"github.com/mark3labs/mcp-go/mcp"
)

// HandlerSet exposes MCP tool handlers with shared dependencies.
type HandlerSet struct {
	deps *Dependencies
}

// NewHandlerSet constructs a handler set.
func NewHandlerSet(deps *Dependencies) *HandlerSet {
	if deps == nil {
		deps = NewDependencies("", nil)
	}
	return &HandlerSet{deps: deps}
}

// tool argument -> config key it overrides
var overridableArgs = map[string]string{
	"min_percentage":      "min-percentage",
	"individual":          "individual",
	"seed":                "seed",
	"p":                   "ancestors",
	"q":                   "siblings",
	"intermediate_groups": "intermediate-groups",
	"recursive":           "recursive",
}

// HandleRecommendEdits handles the recommend_edits tool
func (h *HandlerSet) HandleRecommendEdits(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	paths := stringSlice(args["paths"])
	if len(paths) == 0 {
		return mcp.NewToolResultError("paths parameter is required and must be a string or an array of strings"), nil
	}
	target, ok := args["target"].(string)
	if !ok || target == "" {
		return mcp.NewToolResultError("target parameter is required and must be a string"), nil
	}
	resultsPath, ok := args["csv"].(string)
	if !ok || resultsPath == "" {
		return mcp.NewToolResultError("csv parameter is required and must be a string"), nil
	}
	for _, path := range append(append([]string{}, paths...), target, resultsPath) {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return mcp.NewToolResultError(fmt.Sprintf("path does not exist: %s", path)), nil
		}
	}

	req := domain.RecommendRequest{
		SourcePaths:  paths,
		TargetDir:    target,
		ResultsPath:  resultsPath,
		OutputWriter: io.Discard,
		ConfigPath:   h.deps.ConfigPath(),
	}
	explicit := make(map[string]bool)
	for arg, key := range overridableArgs {
		if _, set := args[arg]; set {
			explicit[key] = true
		}
	}
	if v, ok := args["min_percentage"].(float64); ok {
		req.MinPercentage = v
	}
	if v, ok := args["individual"].(bool); ok {
		req.Individual = v
	}
	if v, ok := args["seed"].(float64); ok {
		if v < 0 {
			return mcp.NewToolResultError("seed must not be negative"), nil
		}
		req.Seed = uint64(v)
	}
	if v, ok := args["p"].(float64); ok {
		req.P = int(v)
	}
	if v, ok := args["q"].(float64); ok {
		req.Q = int(v)
	}
	if v, ok := args["intermediate_groups"].(string); ok {
		req.IntermediateGroups = v
	}
	if v, ok := args["recursive"].(bool); ok {
		req.Recursive = v
	}

	useCase, err := h.deps.BuildRecommendUseCase(explicit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create recommender: %v", err)), nil
	}

	result, err := useCase.Execute(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("recommendation failed: %v", err)), nil
	}

	outputMode := "summary"
	if om, ok := args["output_mode"].(string); ok {
		outputMode = om
	}

	var responseData interface{}
	switch outputMode {
	case "full":
		responseData = result
	default:
		responseData = formatRecommendSummary(result)
	}

	jsonData, err := json.Marshal(responseData)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// HandleProfileDistance handles the profile_distance tool
func (h *HandlerSet) HandleProfileDistance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	source, ok := args["source"].(string)
	if !ok || source == "" {
		return mcp.NewToolResultError("source parameter is required and must be a string"), nil
	}
	target, ok := args["target"].(string)
	if !ok || target == "" {
		return mcp.NewToolResultError("target parameter is required and must be a string"), nil
	}

	req := domain.DistanceRequest{SourcePath: source, TargetPath: target}
	if v, ok := args["p"].(float64); ok {
		req.P = int(v)
	}
	if v, ok := args["q"].(float64); ok {
		req.Q = int(v)
	}

	useCase, err := h.deps.BuildRecommendUseCase(nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create recommender: %v", err)), nil
	}

	result, err := useCase.Distance(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("distance computation failed: %v", err)), nil
	}

	jsonData, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// stringSlice accepts a single string or an array of strings.
func stringSlice(v interface{}) []string {
	switch value := v.(type) {
	case string:
		if value == "" {
			return nil
		}
		return []string{value}
	case []interface{}:
		var out []string
		for _, item := range value {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return value
	}
	return nil
}

func formatRecommendSummary(result *domain.RecommendResponse) map[string]interface{} {
	projects := make([]map[string]interface{}, 0, len(result.Projects))
	for _, p := range result.Projects {
		entry := map[string]interface{}{
			"project_name": p.ProjectName,
			"distance":     p.Distance,
			"edits":        len(p.Recommendations),
		}
		if p.TargetName != "" {
			entry["reference"] = p.TargetName
		}
		if p.Failed() {
			entry["error"] = p.Error
		}
		actions := make([]string, 0, len(p.Recommendations))
		for _, row := range p.Recommendations {
			actions = append(actions, fmt.Sprintf("%s %s in %s", row.Action(), row.AffectedBlock, row.ActorName))
		}
		entry["actions"] = actions
		projects = append(projects, entry)
	}

	return map[string]interface{}{
		"success":    result.Success,
		"statistics": result.Statistics,
		"projects":   projects,
	}
}
