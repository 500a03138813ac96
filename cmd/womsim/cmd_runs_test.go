package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// executeRuns runs a 'womsim runs' subcommand against dataDir and fails
// the test on error.
func executeRuns(t *testing.T, dataDir string, args ...string) string {
	t.Helper()
	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newRunsCmd())
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetArgs(append(args, "--data-dir", dataDir))
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("womsim %s: %v", strings.Join(args, " "), err)
	}
	return buf.String()
}

// saveRun persists one run through the run command and returns its id.
func saveRun(t *testing.T, dataDir, name, seed string) string {
	t.Helper()
	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newRunCmd())
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"run", "--seed", seed, "--steps", "5", "--agents", "20", "--neighbors", "4",
		"--name", name, "--data-dir", dataDir, "--json"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("failed to save run: %v", err)
	}
	var payload struct {
		RunID string `json:"run_id"`
	}
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode run output: %v", err)
	}
	if payload.RunID == "" {
		t.Fatal("expected a run_id in --json output")
	}
	return payload.RunID
}

func TestRunsCommandListEmpty(t *testing.T) {
	output := executeRuns(t, t.TempDir(), "runs", "list")
	if !strings.Contains(output, "No saved runs.") {
		t.Errorf("expected empty listing, got %q", output)
	}
}

func TestRunsCommandLifecycle(t *testing.T) {
	dataDir := t.TempDir()
	id := saveRun(t, dataDir, "lifecycle", "7")

	listOut := executeRuns(t, dataDir, "runs", "list")
	if !strings.Contains(listOut, id) || !strings.Contains(listOut, "lifecycle") {
		t.Errorf("saved run missing from listing:\n%s", listOut)
	}

	showOut := executeRuns(t, dataDir, "runs", "show", id)
	if !strings.Contains(showOut, "seed=7") {
		t.Errorf("show missing parameters:\n%s", showOut)
	}
	if !strings.Contains(showOut, "tick") || !strings.Contains(showOut, "adopters") {
		t.Errorf("show missing series table:\n%s", showOut)
	}

	configOut := executeRuns(t, dataDir, "runs", "show", id, "--config")
	if !strings.Contains(configOut, "agents: 20") {
		t.Errorf("stored config missing:\n%s", configOut)
	}

	exportOut := executeRuns(t, dataDir, "runs", "export", id)
	if !strings.HasPrefix(exportOut, "tick,adopters\n") {
		t.Errorf("default export is not CSV on stdout: %q", exportOut)
	}

	deleteOut := executeRuns(t, dataDir, "runs", "delete", id)
	if !strings.Contains(deleteOut, "Deleted run") {
		t.Errorf("unexpected delete output: %q", deleteOut)
	}

	listOut = executeRuns(t, dataDir, "runs", "list")
	if !strings.Contains(listOut, "No saved runs.") {
		t.Errorf("run still listed after delete:\n%s", listOut)
	}
}

func TestRunsCommandExportFile(t *testing.T) {
	dataDir := t.TempDir()
	id := saveRun(t, dataDir, "export-me", "9")

	outPath := filepath.Join(t.TempDir(), "series.jsonl")
	executeRuns(t, dataDir, "runs", "export", id, "--output", outPath)

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("export file not written: %v", err)
	}
	if !strings.Contains(string(data), `"tick":0`) {
		t.Errorf("unexpected JSONL content: %q", data)
	}
}

func TestRunsCommandShowMissing(t *testing.T) {
	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newRunsCmd())
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"runs", "show", "run-missing00", "--data-dir", t.TempDir()})

	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "run not found") {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestRunsCommandDeleteMissing(t *testing.T) {
	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newRunsCmd())
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"runs", "delete", "run-missing00", "--data-dir", t.TempDir()})

	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "run not found") {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestRunsCommandListJSON(t *testing.T) {
	dataDir := t.TempDir()
	saveRun(t, dataDir, "first", "1")
	saveRun(t, dataDir, "second", "2")

	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newRunsCmd())
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"runs", "list", "--data-dir", dataDir, "--json"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var payload struct {
		Count int `json:"count"`
		Runs  []struct {
			Name string `json:"name"`
		} `json:"runs"`
	}
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if payload.Count != 2 {
		t.Errorf("count = %d, want 2", payload.Count)
	}
}
