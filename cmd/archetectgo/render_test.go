package main

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/madstone-tech/archetect-go/internal/core/entities"
)

func newTestRenderCmd(t *testing.T, flags []string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	registerRenderFlags(cmd)
	if err := cmd.Flags().Parse(flags); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}
	return cmd
}

func TestRenderOptionsFromFlags_Defaults(t *testing.T) {
	cmd := newTestRenderCmd(t, nil)

	opts, err := renderOptionsFromFlags(cmd)
	if err != nil {
		t.Fatalf("renderOptionsFromFlags: %v", err)
	}
	if opts.Destination != "." {
		t.Errorf("Destination = %q, want \".\"", opts.Destination)
	}
	if len(opts.Answers) != 0 {
		t.Errorf("Answers = %v, want empty", opts.Answers)
	}
	if opts.UseDefaultsAll || opts.Headless || opts.ForceRefresh {
		t.Errorf("boolean flags should default false, got %+v", opts)
	}
}

func TestRenderOptionsFromFlags_ParsesAnswersAndSwitches(t *testing.T) {
	cmd := newTestRenderCmd(t, []string{
		"--destination", "./out",
		"--answer", "name=svc",
		"--answer", "version=1.0",
		"--switch", "feature-x",
		"--use-default", "author",
		"--use-defaults-all",
		"--headless",
		"--force-refresh",
	})

	opts, err := renderOptionsFromFlags(cmd)
	if err != nil {
		t.Fatalf("renderOptionsFromFlags: %v", err)
	}

	if opts.Destination != "./out" {
		t.Errorf("Destination = %q, want \"./out\"", opts.Destination)
	}
	want := map[string]entities.Answer{
		"name":    {Literal: "svc"},
		"version": {Literal: "1.0"},
	}
	if len(opts.Answers) != len(want) {
		t.Fatalf("Answers = %v, want %v", opts.Answers, want)
	}
	for k, v := range want {
		if got := opts.Answers[k]; got != v {
			t.Errorf("Answers[%q] = %+v, want %+v", k, got, v)
		}
	}
	if len(opts.Switches) != 1 || opts.Switches[0] != "feature-x" {
		t.Errorf("Switches = %v, want [feature-x]", opts.Switches)
	}
	if len(opts.UseDefaults) != 1 || opts.UseDefaults[0] != "author" {
		t.Errorf("UseDefaults = %v, want [author]", opts.UseDefaults)
	}
	if !opts.UseDefaultsAll || !opts.Headless || !opts.ForceRefresh {
		t.Errorf("boolean flags should be true, got %+v", opts)
	}
}

func TestRenderOptionsFromFlags_InvalidAnswerErrors(t *testing.T) {
	cmd := newTestRenderCmd(t, []string{"--answer", "no-equals-sign"})

	if _, err := renderOptionsFromFlags(cmd); err == nil {
		t.Fatal("expected an error for a malformed --answer, got nil")
	}
}
