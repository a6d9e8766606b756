package deps

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var stubScript = []byte("#!/bin/sh\nexit 0\n")

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	if err := os.WriteFile(present, stubScript, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("expected blank command detail, got %q", results[2].Detail)
	}
}

func TestProbeAllAbsent(t *testing.T) {
	tmp := t.TempDir()
	candidates := []string{
		filepath.Join(tmp, "bin", "rhubarb", "rhubarb"),
		filepath.Join(tmp, "rhubarb"),
		filepath.Join(tmp, "rhubarb.exe"),
	}
	found, probed, ok := Probe(candidates)
	if ok || found != "" {
		t.Fatalf("expected no match, got %q", found)
	}
	if strings.Join(probed, "|") != strings.Join(candidates, "|") {
		t.Fatalf("expected every candidate probed in order, got %v", probed)
	}
}

func TestProbeReturnsFirstExecutable(t *testing.T) {
	tmp := t.TempDir()
	dir := filepath.Join(tmp, "nested")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	notExec := filepath.Join(tmp, "plain")
	if err := os.WriteFile(notExec, stubScript, 0o644); err != nil {
		t.Fatalf("write plain: %v", err)
	}
	last := filepath.Join(tmp, "last")
	if err := os.WriteFile(last, stubScript, 0o755); err != nil {
		t.Fatalf("write last: %v", err)
	}

	found, probed, ok := Probe([]string{filepath.Join(tmp, "missing"), dir, notExec, "", last, last})
	if !ok || found != last {
		t.Fatalf("expected %q, got %q (ok=%v)", last, found, ok)
	}
	if len(probed) != 4 {
		t.Fatalf("expected 4 probed candidates, got %v", probed)
	}
}

func TestCheckProbeDetailListsCandidates(t *testing.T) {
	tmp := t.TempDir()
	a := filepath.Join(tmp, "a")
	b := filepath.Join(tmp, "b")
	status := CheckProbe("Rhubarb", "lip sync analyzer", []string{a, b})
	if status.Available {
		t.Fatal("expected unavailable status")
	}
	if !strings.Contains(status.Detail, a) || !strings.Contains(status.Detail, b) {
		t.Fatalf("detail should list probed paths, got %q", status.Detail)
	}
}
