package mcpserver

import (
	"context"
	"encoding/json"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/afero"

	"github.com/JairoTorregrosa/picopala/internal/display"
	"github.com/JairoTorregrosa/picopala/internal/logging"
	"github.com/JairoTorregrosa/picopala/internal/plan"
)

// planTool is one registered MCP tool.
type planTool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// base holds what every plan tool needs.
type base struct {
	fs       afero.Fs
	logger   *logging.Logger
	renderer *display.Renderer
}

func newBase(fs afero.Fs, logger *logging.Logger, tool string) base {
	return base{
		fs:     fs,
		logger: logger.With("tool", tool),
		// Tool results are plain text; io.Discard is never a terminal.
		renderer: display.NewRenderer(io.Discard),
	}
}

func pathParam() mcp.ToolOption {
	return mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the markdown plan file."),
	)
}

// load reads the plan named by the path argument. A non-nil result is the
// tool error to return.
func (b base) load(req mcp.CallToolRequest) (string, []plan.Task, *mcp.CallToolResult) {
	path := req.GetString("path", "")
	if path == "" {
		return "", nil, mcp.NewToolResultError("path is required")
	}

	tasks, err := plan.Load(b.fs, path)
	if err != nil {
		b.logger.Warn("plan load failed", "path", path, "error", err.Error())
		return path, nil, mcp.NewToolResultError(err.Error())
	}
	return path, tasks, nil
}

// --- plan_validate ---

type validateTool struct{ base }

func newValidateTool(fs afero.Fs, logger *logging.Logger) *validateTool {
	return &validateTool{newBase(fs, logger, "plan_validate")}
}

// Definition returns the MCP tool definition for registration.
func (t *validateTool) Definition() mcp.Tool {
	return mcp.NewTool("plan_validate",
		mcp.WithDescription(
			"Validate a plan: required fields, status values, dependency references, "+
				"duplicate ids and cycles. Returns a success summary or every error found.",
		),
		pathParam(),
	)
}

// Handle processes the plan_validate tool call.
func (t *validateTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, tasks, failure := t.load(req)
	if failure != nil {
		return failure, nil
	}

	issues := plan.Validate(tasks)
	t.logger.Info("plan validated", "path", path, "tasks", len(tasks), "issues", len(issues))
	if len(issues) > 0 {
		return mcp.NewToolResultError(t.renderer.Invalid(issues)), nil
	}
	return mcp.NewToolResultText(t.renderer.Valid(tasks)), nil
}

// --- plan_waves ---

type wavesTool struct{ base }

func newWavesTool(fs afero.Fs, logger *logging.Logger) *wavesTool {
	return &wavesTool{newBase(fs, logger, "plan_waves")}
}

// Definition returns the MCP tool definition for registration.
func (t *wavesTool) Definition() mcp.Tool {
	return mcp.NewTool("plan_waves",
		mcp.WithDescription(
			"Compute the parallel execution waves of a valid plan as JSON. Completed tasks are "+
				"excluded and satisfy their dependents. Fails without scheduling if the plan does not validate.",
		),
		pathParam(),
	)
}

// Handle processes the plan_waves tool call.
func (t *wavesTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, tasks, failure := t.load(req)
	if failure != nil {
		return failure, nil
	}

	if issues := plan.Validate(tasks); len(issues) > 0 {
		return mcp.NewToolResultError(t.renderer.WavesBlocked(issues)), nil
	}

	waves, err := plan.ComputeWaves(tasks)
	if err != nil {
		t.logger.Warn("wave computation failed", "path", path, "error", err.Error())
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := json.MarshalIndent(plan.BuildWaveReports(tasks, waves), "", "  ")
	if err != nil {
		return nil, err
	}
	t.logger.Info("waves computed", "path", path, "waves", len(waves))
	return mcp.NewToolResultText(string(data)), nil
}

// --- plan_status ---

type statusTool struct{ base }

func newStatusTool(fs afero.Fs, logger *logging.Logger) *statusTool {
	return &statusTool{newBase(fs, logger, "plan_status")}
}

// Definition returns the MCP tool definition for registration.
func (t *statusTool) Definition() mcp.Tool {
	return mcp.NewTool("plan_status",
		mcp.WithDescription("Summarize a plan by task status: totals and the task ids in each status."),
		pathParam(),
	)
}

// Handle processes the plan_status tool call.
func (t *statusTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, tasks, failure := t.load(req)
	if failure != nil {
		return failure, nil
	}
	return mcp.NewToolResultText(t.renderer.Status(path, plan.Summarize(tasks))), nil
}
