package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ccollicutt/stackreport/internal/cli"
	"github.com/ccollicutt/stackreport/pkg/config"
	"github.com/ccollicutt/stackreport/pkg/family"
	"github.com/ccollicutt/stackreport/pkg/output"
	"github.com/ccollicutt/stackreport/pkg/parser"
	"github.com/ccollicutt/stackreport/pkg/source"
	"github.com/ccollicutt/stackreport/pkg/stacktrace"
)

var (
	projectRoot string
	rootOnce    sync.Once
)

// chdir changes to the project root directory for tests.
// Config files use paths relative to project root.
func chdir(t *testing.T) {
	t.Helper()
	rootOnce.Do(func() {
		_, filename, _, _ := runtime.Caller(0)
		projectRoot = filepath.Dir(filepath.Dir(filename))
	})
	if err := os.Chdir(projectRoot); err != nil {
		t.Fatalf("Failed to chdir to project root: %v", err)
	}
}

// requireFile fails the test if the required test file doesn't exist.
// We never skip tests - missing test data is a test failure.
func requireFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("Required test file not found: %s", path)
	}
}

// normalizeAll runs the full pipeline for a configuration file.
func normalizeAll(t *testing.T, configFile string) (*config.Config, []*output.Result) {
	t.Helper()
	ctx := context.Background()

	cfg, err := config.Load(ctx, configFile)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	files, err := source.ExpandGlobs(cfg.Sources)
	if err != nil {
		t.Fatalf("Failed to expand globs: %v", err)
	}
	for _, f := range files {
		requireFile(t, f)
	}

	n := stacktrace.New(
		stacktrace.WithEnvironment(cfg.BuildEnvironment()),
		stacktrace.WithDetector(cfg.Detector()),
	)

	src := source.NewFileSource(files, cfg.Format())
	defer src.Close()

	var results []*output.Result
	for {
		rec, err := src.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Reading errors failed: %v", err)
		}
		results = append(results, &output.Result{
			Source:      rec.Source,
			LineNum:     rec.LineNum,
			HasStack:    rec.Raw.HasStack(),
			ErrorReport: n.ParseError(rec.Raw),
		})
	}
	return cfg, results
}

// runCLI executes the root command in-process.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := cli.NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// TestE2E_ChromeJSONLines runs the pipeline over errors captured in Chrome.
func TestE2E_ChromeJSONLines(t *testing.T) {
	chdir(t)
	cfg, results := normalizeAll(t, filepath.Join("testdata", "configs", "chrome.yaml"))

	if got := cfg.Detector().Detect(cfg.BuildEnvironment()); got != family.Chrome {
		t.Fatalf("Detected %s, want chrome", got)
	}

	want := []parser.FrameList{
		{
			{Line: 2, Column: 9, Filename: "http://192.168.31.8:8000/c.js"},
			{Line: 4, Column: 15, Filename: "http://192.168.31.8:8000/b.js"},
			{Line: 4, Column: 3, Filename: "http://192.168.31.8:8000/a.js"},
			{Line: 22, Column: 3, Filename: "http://192.168.31.8:8000/a.js"},
		},
		{},
		{
			{Line: 40, Column: 9, Filename: "https://example.com/index.html"},
		},
		{
			{Line: parser.Unresolved, Column: parser.Unresolved, Filename: "https://example.com/app.js"},
		},
	}

	var got []parser.FrameList
	for _, r := range results {
		got = append(got, r.Stack)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}

	report := output.NewReport(results, output.Metadata{Family: family.Chrome})
	wantSummary := output.Summary{ErrorsProcessed: 4, WithStack: 3, EmptyStacks: 0, FramesExtracted: 6}
	if diff := cmp.Diff(wantSummary, report.Summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

// TestE2E_FirefoxText runs the pipeline over a Firefox stack saved as text.
func TestE2E_FirefoxText(t *testing.T) {
	chdir(t)
	cfg, results := normalizeAll(t, filepath.Join("testdata", "configs", "firefox.toml"))

	if got := cfg.Detector().Detect(cfg.BuildEnvironment()); got != family.Firefox {
		t.Fatalf("Detected %s, want firefox", got)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Message != "TypeError: Error raised" {
		t.Errorf("Message = %q", results[0].Message)
	}

	want := parser.FrameList{
		{Line: 2, Column: 9, Filename: "http://192.168.31.8:8000/c.js"},
		{Line: 4, Column: 15, Filename: "http://192.168.31.8:8000/b.js"},
		{Line: 4, Column: 3, Filename: "http://192.168.31.8:8000/a.js"},
		{Line: 22, Column: 3, Filename: "http://192.168.31.8:8000/page.htm"},
	}
	if diff := cmp.Diff(want, results[0].Stack); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}
}

// TestE2E_CrossFamily parses Firefox text as if captured in Chrome.
func TestE2E_CrossFamily(t *testing.T) {
	chdir(t)
	out, _, err := runCLI(t, "parse", "-o", "json", "--browser", "chrome", filepath.Join("testdata", "errors", "firefox.txt"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	var report output.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if report.Summary.FramesExtracted != 0 || report.Summary.EmptyStacks != 1 {
		t.Errorf("Unexpected summary: %+v", report.Summary)
	}
}

func TestE2E_CLI_ParseWithConfig(t *testing.T) {
	chdir(t)
	configFile := filepath.Join("testdata", "configs", "chrome.yaml")

	out, _, err := runCLI(t, "parse", "-c", configFile)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	var report output.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("Config output json was not honoured: %v\n%s", err, out)
	}
	if report.Metadata.Family != family.Chrome || report.Summary.FramesExtracted != 6 {
		t.Errorf("Unexpected report: %+v", report.Summary)
	}
}

func TestE2E_CLI_TextOutput(t *testing.T) {
	chdir(t)
	configFile := filepath.Join("testdata", "configs", "firefox.toml")

	out, _, err := runCLI(t, "parse", "-c", configFile)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	checks := []string{
		"=== stackreport ===",
		"] TypeError: Error raised",
		"  at http://192.168.31.8:8000/page.htm:22:3",
		"4 frames extracted",
	}
	for _, check := range checks {
		if !strings.Contains(out, check) {
			t.Errorf("Output missing %q:\n%s", check, out)
		}
	}
}

func TestE2E_CLI_DebugLogging(t *testing.T) {
	chdir(t)
	errorsFile := filepath.Join("testdata", "errors", "chrome.jsonl")

	_, stderr, err := runCLI(t, "--debug", "parse", "--browser", "unknown", errorsFile)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !strings.Contains(stderr, "no matcher for environment") {
		t.Errorf("Expected debug log on stderr, got: %q", stderr)
	}

	_, stderr, err = runCLI(t, "parse", "--browser", "unknown", errorsFile)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if stderr != "" {
		t.Errorf("Expected no logging without --debug, got: %q", stderr)
	}
}

func TestE2E_Diagnose(t *testing.T) {
	chdir(t)
	out, _, err := runCLI(t, "diagnose", "--browser", "chrome", filepath.Join("testdata", "errors", "chrome.jsonl"))
	if err != nil {
		t.Fatalf("diagnose failed: %v", err)
	}

	checks := []string{
		"=== Stack Diagnostics ===",
		"unreportable_frame",
		"unparsable_coordinate",
		"No stack supplied",
		"Summary: 4 errors, 5 frame lines, 1 unresolved coordinates, 2 unreportable, 3 unparsable",
	}
	for _, check := range checks {
		if !strings.Contains(out, check) {
			t.Errorf("Output missing %q:\n%s", check, out)
		}
	}
}

func TestE2E_Detect_WriteConfig(t *testing.T) {
	chdir(t)
	configPath := filepath.Join(t.TempDir(), "stackreport.yaml")

	if _, _, err := runCLI(t, "detect", "-w", configPath, "window", "InstallTrigger"); err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	out, _, err := runCLI(t, "validate", configPath)
	if err != nil {
		t.Fatalf("Generated config failed validation: %v", err)
	}
	if !strings.Contains(out, "Environment:  firefox") {
		t.Errorf("Expected firefox environment:\n%s", out)
	}
}

func TestE2E_Validate_Configs(t *testing.T) {
	chdir(t)
	for _, name := range []string{"chrome.yaml", "firefox.toml"} {
		t.Run(name, func(t *testing.T) {
			out, _, err := runCLI(t, "validate", filepath.Join("testdata", "configs", name))
			if err != nil {
				t.Fatalf("validate failed: %v", err)
			}
			if !strings.Contains(out, "Files matched: 1") {
				t.Errorf("Expected one matched file:\n%s", out)
			}
		})
	}
}

func TestE2E_Version(t *testing.T) {
	out, _, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "stackreport ") {
		t.Errorf("Unexpected version output: %q", out)
	}
}
