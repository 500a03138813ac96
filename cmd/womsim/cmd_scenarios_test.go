package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestScenariosCommandList(t *testing.T) {
	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newScenariosCmd())
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"scenarios"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Built-in scenarios (4)") {
		t.Errorf("missing header, got %q", output)
	}
	for _, name := range []string{"baseline", "ad-blitz", "word-of-mouth", "lattice"} {
		if !strings.Contains(output, name) {
			t.Errorf("missing scenario %q in listing:\n%s", name, output)
		}
	}
}

func TestScenariosCommandListJSON(t *testing.T) {
	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newScenariosCmd())
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"scenarios", "--json"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var payload struct {
		Scenarios []string `json:"scenarios"`
		Count     int      `json:"count"`
	}
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if payload.Count != 4 || len(payload.Scenarios) != 4 {
		t.Errorf("expected 4 scenarios, got %+v", payload)
	}
}

func TestScenariosCommandShow(t *testing.T) {
	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newScenariosCmd())
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"scenarios", "baseline"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "agents: 1000") {
		t.Errorf("missing YAML content, got %q", output)
	}
	if !strings.Contains(output, "#") {
		t.Errorf("expected the preset's comment header, got %q", output)
	}
}

func TestScenariosCommandShowUnknown(t *testing.T) {
	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newScenariosCmd())
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"scenarios", "nope"})

	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "unknown scenario") {
		t.Errorf("expected unknown scenario error, got %v", err)
	}
}
