package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/JairoTorregrosa/picopala/internal/plan"
	"github.com/JairoTorregrosa/picopala/internal/testutil"
)

type result struct {
	code   int
	stdout string
	stderr string
}

// isolate keeps the user's config and working directory out of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("PICOPALA_APPROVAL_STATE_DIR", "/state")
	t.Chdir(t.TempDir())
}

// executeCommand runs the CLI with args against fs and captures its output.
func executeCommand(t *testing.T, fs afero.Fs, stdin string, args ...string) result {
	t.Helper()
	return executeContext(t, context.Background(), fs, stdin, args...)
}

func executeContext(t *testing.T, ctx context.Context, fs afero.Fs, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := NewApp(fs, strings.NewReader(stdin), &stdout, &stderr)
	code := app.Run(ctx, args)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func newPlanFS(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	testutil.WritePlan(t, fs, "/plans/valid.md", testutil.ValidPlan())
	testutil.WritePlan(t, fs, "/plans/invalid.md", testutil.InvalidPlan())
	testutil.WritePlan(t, fs, "/plans/cyclic.md", testutil.CyclicPlan())
	testutil.WritePlan(t, fs, "/plans/empty.md", "# Plan\n\nNothing yet.\n")
	return fs
}

func TestRootCommand(t *testing.T) {
	root := NewRootCmd(NewApp(afero.NewMemMapFs(), nil, nil, nil))

	if root.Use != "picopala" {
		t.Errorf("root.Use = %q, want %q", root.Use, "picopala")
	}

	cmdMap := make(map[string]bool)
	for _, c := range root.Commands() {
		cmdMap[c.Name()] = true
	}
	for _, name := range topLevel {
		if !cmdMap[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil || root.PersistentFlags().Lookup("log-level") == nil {
		t.Error("global --config and --log-level flags should be registered")
	}
}

func TestUnknownCommand(t *testing.T) {
	isolate(t)
	res := executeCommand(t, afero.NewMemMapFs(), "", "frobnicate", "plan.md")

	if res.code != 1 {
		t.Errorf("exit code = %d, want 1", res.code)
	}
	want := "ERROR: Unknown command 'frobnicate'. Use: validate, waves, status, watch, approve, hook, serve, config\n"
	if res.stderr != want {
		t.Errorf("stderr = %q, want %q", res.stderr, want)
	}
}

func TestValidateCommand(t *testing.T) {
	isolate(t)
	fs := newPlanFS(t)

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name:     "valid plan",
			args:     []string{"validate", "/plans/valid.md"},
			wantCode: 0,
			wantStdout: "VALID: 3 tasks, all dependencies resolved.\n" +
				"  T1: Research (depends_on: [])\n" +
				"  T2: Build (depends_on: [T1])\n" +
				"  T3: Ship (depends_on: [T1, T2])\n",
		},
		{
			name:     "invalid plan",
			args:     []string{"validate", "/plans/invalid.md"},
			wantCode: 1,
			wantStderr: "VALIDATION FAILED: 2 error(s):\n" +
				"  ERROR: T2: invalid status 'done'. Must be one of: [completed, failed, in_progress, pending]\n" +
				"  ERROR: T2: depends on 'T9' which does not exist. Available: [T1, T2]\n",
		},
		{
			name:       "missing file",
			args:       []string{"validate", "/plans/missing.md"},
			wantCode:   1,
			wantStderr: "ERROR: File not found: /plans/missing.md\n",
		},
		{
			name:       "no tasks",
			args:       []string{"validate", "/plans/empty.md"},
			wantCode:   1,
			wantStderr: "ERROR: No tasks found in /plans/empty.md. Tasks must be formatted as '### T1: Task Name'\n",
		},
		{
			name:       "missing argument",
			args:       []string{"validate"},
			wantCode:   1,
			wantStderr: "ERROR: missing plan file argument\nUsage: picopala validate <plan-file> [flags]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := executeCommand(t, fs, "", tt.args...)
			if res.code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr %q)", res.code, tt.wantCode, res.stderr)
			}
			if res.stdout != tt.wantStdout {
				t.Errorf("stdout =\n%s\nwant\n%s", res.stdout, tt.wantStdout)
			}
			if res.stderr != tt.wantStderr {
				t.Errorf("stderr =\n%s\nwant\n%s", res.stderr, tt.wantStderr)
			}
		})
	}
}

func TestValidateCommand_HelpNotesOutputFormat(t *testing.T) {
	isolate(t)
	res := executeCommand(t, afero.NewMemMapFs(), "", "validate", "--help")

	if res.code != 0 {
		t.Fatalf("exit code = %d, want 0 (stderr %q)", res.code, res.stderr)
	}
	for _, want := range []string{`"VALID: ..."`, `"VALIDATION FAILED: N error(s):"`, "[T1, T2]", "['T1']"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("validate help should mention %s, got:\n%s", want, res.stdout)
		}
	}
}

func TestValidateCommand_JSON(t *testing.T) {
	isolate(t)
	fs := newPlanFS(t)

	t.Run("invalid plan", func(t *testing.T) {
		res := executeCommand(t, fs, "", "validate", "--format", "json", "/plans/invalid.md")
		if res.code != 1 {
			t.Errorf("exit code = %d, want 1", res.code)
		}

		var report validationReport
		if err := json.Unmarshal([]byte(res.stdout), &report); err != nil {
			t.Fatalf("stdout is not JSON: %v\n%s", err, res.stdout)
		}
		if report.Valid || len(report.Issues) != 2 || len(report.Tasks) != 2 {
			t.Errorf("report = %+v", report)
		}
		if report.Issues[0].Kind != plan.IssueInvalidStatus {
			t.Errorf("first issue kind = %q", report.Issues[0].Kind)
		}
	})

	t.Run("valid plan has empty issue list", func(t *testing.T) {
		res := executeCommand(t, fs, "", "validate", "-f", "json", "/plans/valid.md")
		if res.code != 0 {
			t.Fatalf("exit code = %d (stderr %q)", res.code, res.stderr)
		}
		if !strings.Contains(res.stdout, `"issues": []`) {
			t.Errorf("issues should be an empty array:\n%s", res.stdout)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		res := executeCommand(t, fs, "", "validate", "--format", "xml", "/plans/valid.md")
		if res.code != 1 || !strings.Contains(res.stderr, "invalid format 'xml' for validate. Use: text, json") {
			t.Errorf("code = %d, stderr = %q", res.code, res.stderr)
		}
	})
}

func TestWavesCommand(t *testing.T) {
	isolate(t)
	fs := newPlanFS(t)

	t.Run("json", func(t *testing.T) {
		res := executeCommand(t, fs, "", "waves", "/plans/valid.md")
		if res.code != 0 {
			t.Fatalf("exit code = %d (stderr %q)", res.code, res.stderr)
		}

		var waves []plan.WaveReport
		if err := json.Unmarshal([]byte(res.stdout), &waves); err != nil {
			t.Fatalf("stdout is not JSON: %v\n%s", err, res.stdout)
		}
		if len(waves) != 2 || waves[0].Wave != 1 || waves[0].Tasks[0].ID != "T2" || waves[1].Tasks[0].ID != "T3" {
			t.Errorf("waves = %+v", waves)
		}
		if !strings.Contains(res.stdout, "\n  {\n    \"wave\": 1,") {
			t.Errorf("output should be indented by two spaces:\n%s", res.stdout)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		res := executeCommand(t, fs, "", "waves", "--format", "yaml", "/plans/valid.md")
		if res.code != 0 {
			t.Fatalf("exit code = %d (stderr %q)", res.code, res.stderr)
		}

		var waves []plan.WaveReport
		if err := yaml.Unmarshal([]byte(res.stdout), &waves); err != nil {
			t.Fatalf("stdout is not YAML: %v\n%s", err, res.stdout)
		}
		if len(waves) != 2 || waves[1].Tasks[0].DependsOn[1] != "T2" {
			t.Errorf("waves = %+v", waves)
		}
	})

	t.Run("invalid plan is not scheduled", func(t *testing.T) {
		res := executeCommand(t, fs, "", "waves", "/plans/invalid.md")
		if res.code != 1 {
			t.Errorf("exit code = %d, want 1", res.code)
		}
		if res.stdout != "" {
			t.Errorf("stdout should be empty, got %q", res.stdout)
		}
		if !strings.HasPrefix(res.stderr, "Plan has validation errors. Fix them first:\n  ERROR: ") {
			t.Errorf("stderr = %q", res.stderr)
		}
	})

	t.Run("cycle is a validation error", func(t *testing.T) {
		res := executeCommand(t, fs, "", "waves", "/plans/cyclic.md")
		if res.code != 1 || !strings.Contains(res.stderr, "Circular dependency detected involving") {
			t.Errorf("code = %d, stderr = %q", res.code, res.stderr)
		}
	})
}

func TestWavesCommand_ConfiguredFormat(t *testing.T) {
	isolate(t)
	t.Setenv("PICOPALA_OUTPUT_WAVES_FORMAT", "yaml")
	fs := newPlanFS(t)

	res := executeCommand(t, fs, "", "waves", "/plans/valid.md")
	if res.code != 0 {
		t.Fatalf("exit code = %d (stderr %q)", res.code, res.stderr)
	}
	if !strings.HasPrefix(res.stdout, "- wave: 1\n") {
		t.Errorf("configured format should be yaml:\n%s", res.stdout)
	}

	res = executeCommand(t, fs, "", "waves", "--format", "json", "/plans/valid.md")
	if !strings.HasPrefix(res.stdout, "[\n") {
		t.Errorf("--format should override the config:\n%s", res.stdout)
	}
}

func TestStatusCommand(t *testing.T) {
	isolate(t)
	fs := newPlanFS(t)

	t.Run("text", func(t *testing.T) {
		res := executeCommand(t, fs, "", "status", "/plans/valid.md")
		want := "Plan: /plans/valid.md\n" +
			"Total: 3 | Completed: 1 | In Progress: 1 | Pending: 1 | Failed: 0\n" +
			"\n" +
			"  [completed]: T1\n" +
			"  [in_progress]: T3\n" +
			"  [pending]: T2\n"
		if res.code != 0 || res.stdout != want {
			t.Errorf("code = %d, stdout =\n%s\nwant\n%s", res.code, res.stdout, want)
		}
	})

	t.Run("invalid plans still summarize", func(t *testing.T) {
		res := executeCommand(t, fs, "", "status", "/plans/invalid.md")
		if res.code != 0 || !strings.Contains(res.stdout, "  [done]: T2\n") {
			t.Errorf("code = %d, stdout =\n%s", res.code, res.stdout)
		}
	})

	t.Run("json", func(t *testing.T) {
		res := executeCommand(t, fs, "", "status", "--format", "json", "/plans/valid.md")
		var report struct {
			Plan     string              `json:"plan"`
			Total    int                 `json:"total"`
			ByStatus map[string][]string `json:"by_status"`
		}
		if err := json.Unmarshal([]byte(res.stdout), &report); err != nil {
			t.Fatalf("stdout is not JSON: %v\n%s", err, res.stdout)
		}
		if report.Plan != "/plans/valid.md" || report.Total != 3 || report.ByStatus["pending"][0] != "T2" {
			t.Errorf("report = %+v", report)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		res := executeCommand(t, fs, "", "status", "--format", "yaml", "/plans/valid.md")
		for _, want := range []string{"plan: /plans/valid.md\n", "total: 3\n", "in_progress: 1\n"} {
			if !strings.Contains(res.stdout, want) {
				t.Errorf("yaml should contain %q:\n%s", want, res.stdout)
			}
		}
	})
}

func TestApproveAndTaskCompletedHook(t *testing.T) {
	isolate(t)
	fs := afero.NewMemMapFs()
	stdin := `{"team_name":"picopala-alpha","task_id":"7","task_subject":"T1: Research"}`

	res := executeCommand(t, fs, stdin, "hook", "task-completed")
	if res.code != 2 {
		t.Fatalf("unapproved task: exit code = %d, want 2", res.code)
	}
	if !strings.Contains(res.stderr, "Plan task 'T1: Research' (7) cannot be completed") {
		t.Errorf("stderr = %q", res.stderr)
	}

	res = executeCommand(t, fs, "", "approve", "picopala-alpha", "T1: Research")
	if res.code != 0 {
		t.Fatalf("approve: exit code = %d (stderr %q)", res.code, res.stderr)
	}
	marker := filepath.Join("/state", "picopala-alpha", "T1__Research.approved")
	if !strings.Contains(res.stdout, "Marker: "+marker) {
		t.Errorf("approve stdout = %q", res.stdout)
	}
	if ok, _ := afero.Exists(fs, marker); !ok {
		t.Fatalf("marker %s not written", marker)
	}

	res = executeCommand(t, fs, stdin, "hook", "task-completed")
	if res.code != 0 || res.stderr != "" {
		t.Errorf("approved task: code = %d, stderr = %q", res.code, res.stderr)
	}

	res = executeCommand(t, fs, "", "approve", "--revoke", "picopala-alpha", "T1: Research")
	if res.code != 0 {
		t.Fatalf("revoke: exit code = %d", res.code)
	}
	if res = executeCommand(t, fs, stdin, "hook", "task-completed"); res.code != 2 {
		t.Errorf("revoked task: exit code = %d, want 2", res.code)
	}
}

func TestApproveCommand_Usage(t *testing.T) {
	isolate(t)
	res := executeCommand(t, afero.NewMemMapFs(), "", "approve", "picopala-alpha")

	want := "ERROR: missing team and task subject arguments\nUsage: picopala approve <team> <task-subject> [flags]\n"
	if res.code != 1 || res.stderr != want {
		t.Errorf("code = %d, stderr = %q", res.code, res.stderr)
	}
}

func TestTaskCompletedHook_CustomPrefix(t *testing.T) {
	isolate(t)
	t.Setenv("PICOPALA_APPROVAL_TEAM_PREFIX", "crew-")

	stdin := `{"team_name":"picopala-alpha","task_id":"7","task_subject":"T1: Research"}`
	if res := executeCommand(t, afero.NewMemMapFs(), stdin, "hook", "task-completed"); res.code != 0 {
		t.Errorf("team outside the configured prefix should pass, got %d", res.code)
	}
}

func TestReviewerBashHook(t *testing.T) {
	isolate(t)

	tests := []struct {
		name     string
		stdin    string
		wantCode int
	}{
		{"read-only git", `{"tool_input":{"command":"git diff HEAD~1"}}`, 0},
		{"test run", `{"tool_input":{"command":"bun run test"}}`, 0},
		{"chained command", `{"tool_input":{"command":"git log && rm -rf ."}}`, 2},
		{"write command", `{"tool_input":{"command":"git push"}}`, 2},
		{"empty", `{"tool_input":{"command":""}}`, 2},
		{"malformed", `{"tool_input":`, 2},
		{"null document", `null`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := executeCommand(t, afero.NewMemMapFs(), tt.stdin, "hook", "reviewer-bash")
			if res.code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr %q)", res.code, tt.wantCode, res.stderr)
			}
			if tt.wantCode == 2 && res.stderr == "" {
				t.Error("blocked command should explain why on stderr")
			}
		})
	}
}

func TestReviewerBashHook_ConfiguredPrefixes(t *testing.T) {
	isolate(t)
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgFile, []byte("reviewer:\n  allowed_prefixes:\n    - go test\n"), 0644); err != nil {
		t.Fatal(err)
	}

	fs := afero.NewMemMapFs()
	if res := executeCommand(t, fs, `{"tool_input":{"command":"go test ./..."}}`, "--config", cfgFile, "hook", "reviewer-bash"); res.code != 0 {
		t.Errorf("configured prefix should pass, got %d (%q)", res.code, res.stderr)
	}
	if res := executeCommand(t, fs, `{"tool_input":{"command":"git status"}}`, "--config", cfgFile, "hook", "reviewer-bash"); res.code != 2 {
		t.Errorf("default prefix should not apply, got %d", res.code)
	}
}

func TestHook_BrokenConfigBlocks(t *testing.T) {
	isolate(t)
	t.Setenv("PICOPALA_WATCH_DEBOUNCE_MS", "-5")

	stdin := `{"team_name":"other","task_id":"1","task_subject":"T1: x"}`
	res := executeCommand(t, afero.NewMemMapFs(), stdin, "hook", "task-completed")
	if res.code != 2 {
		t.Errorf("exit code = %d, want 2", res.code)
	}
	if !strings.HasPrefix(res.stderr, "TaskCompleted hook: unexpected error: invalid configuration") {
		t.Errorf("stderr = %q", res.stderr)
	}

	res = executeCommand(t, newPlanFS(t), "", "validate", "/plans/valid.md")
	if res.code != 1 || !strings.HasPrefix(res.stderr, "ERROR: invalid configuration") {
		t.Errorf("validate: code = %d, stderr = %q", res.code, res.stderr)
	}
}

func TestGlobalFlags(t *testing.T) {
	isolate(t)
	fs := newPlanFS(t)

	t.Run("invalid log level", func(t *testing.T) {
		res := executeCommand(t, fs, "", "--log-level", "loud", "status", "/plans/valid.md")
		if res.code != 1 || !strings.Contains(res.stderr, "invalid configuration") {
			t.Errorf("code = %d, stderr = %q", res.code, res.stderr)
		}
	})

	t.Run("missing explicit config", func(t *testing.T) {
		res := executeCommand(t, fs, "", "--config", "/nope/config.yaml", "status", "/plans/valid.md")
		if res.code != 1 || !strings.HasPrefix(res.stderr, "ERROR: failed to read config") {
			t.Errorf("code = %d, stderr = %q", res.code, res.stderr)
		}
	})

	t.Run("logging writes to the log dir", func(t *testing.T) {
		logDir := t.TempDir()
		t.Setenv("PICOPALA_LOGGING_ENABLED", "true")
		t.Setenv("PICOPALA_LOGGING_DIR", logDir)

		res := executeCommand(t, fs, "", "--log-level", "debug", "validate", "/plans/valid.md")
		if res.code != 0 {
			t.Fatalf("exit code = %d (stderr %q)", res.code, res.stderr)
		}

		data, err := os.ReadFile(filepath.Join(logDir, "picopala.log"))
		if err != nil {
			t.Fatalf("log file not written: %v", err)
		}
		if !strings.Contains(string(data), `"msg":"plan validated"`) || !strings.Contains(string(data), `"command":"validate"`) {
			t.Errorf("unexpected log contents:\n%s", data)
		}
		if strings.Contains(res.stderr, "plan validated") {
			t.Error("logs must not reach stderr")
		}
	})
}

func TestConfigCommand(t *testing.T) {
	isolate(t)

	res := executeCommand(t, afero.NewMemMapFs(), "", "config")
	if res.code != 0 {
		t.Fatalf("exit code = %d (stderr %q)", res.code, res.stderr)
	}
	for _, want := range []string{
		"# Config file: (none - using defaults)\n",
		"team_prefix: picopala-\n",
		"state_dir: /state\n",
		"waves_format: json\n",
	} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("config output should contain %q:\n%s", want, res.stdout)
		}
	}

	res = executeCommand(t, afero.NewMemMapFs(), "", "config", "path")
	if !strings.Contains(res.stdout, "Search paths:") || !strings.Contains(res.stdout, ".picopala.yaml") {
		t.Errorf("config path output:\n%s", res.stdout)
	}
}

func TestWatchCommand_Plain(t *testing.T) {
	isolate(t)
	t.Setenv("PICOPALA_WATCH_DEBOUNCE_MS", "20")
	path := testutil.WritePlanFile(t, testutil.ValidPlan())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go func() {
		time.Sleep(400 * time.Millisecond)
		_ = os.WriteFile(path, []byte(testutil.InvalidPlan()), 0644)
	}()

	res := executeContext(t, ctx, afero.NewOsFs(), "", "watch", "--plain", path)
	if res.code != 0 {
		t.Fatalf("exit code = %d (stderr %q)", res.code, res.stderr)
	}

	first, second, found := strings.Cut(res.stdout, "---\n")
	if !found {
		t.Fatalf("expected a re-render after the change:\n%s", res.stdout)
	}
	if !strings.Contains(first, "Plan: "+path) || !strings.Contains(first, "Wave 1") {
		t.Errorf("first render should show the waves:\n%s", first)
	}
	if !strings.Contains(second, "VALIDATION FAILED: 2 error(s):") {
		t.Errorf("second render should show the new errors:\n%s", second)
	}
}

func TestWatchCommand_MissingFile(t *testing.T) {
	isolate(t)
	res := executeCommand(t, afero.NewMemMapFs(), "", "watch", "/plans/missing.md")

	if res.code != 1 || res.stderr != "ERROR: File not found: /plans/missing.md\n" {
		t.Errorf("code = %d, stderr = %q", res.code, res.stderr)
	}
}

func TestExecute_RecoversPanics(t *testing.T) {
	isolate(t)
	var stdout, stderr bytes.Buffer
	app := NewApp(afero.NewMemMapFs(), strings.NewReader(""), &stdout, &stderr)

	root := NewRootCmd(app)
	root.AddCommand(&cobra.Command{
		Use: "boom",
		Run: func(*cobra.Command, []string) { panic("kaboom") },
	})

	if code := app.execute(context.Background(), root, []string{"boom"}); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if stderr.String() != "ERROR: unexpected error: kaboom\n" {
		t.Errorf("stderr = %q", stderr.String())
	}
}
