package preflight

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"mouthpiece/internal/config"
	"mouthpiece/internal/delivery"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestCheckRuntime(t *testing.T) {
	if r := CheckRuntime(context.Background(), nil); r.Passed {
		t.Fatal("expected failure for nil client")
	}
	if r := CheckRuntime(context.Background(), fakePinger{}); !r.Passed {
		t.Fatalf("expected pass, got %s", r.Detail)
	}
	r := CheckRuntime(context.Background(), fakePinger{err: context.DeadlineExceeded})
	if r.Passed || r.Detail != "timed out (runtime unresponsive)" {
		t.Fatalf("unexpected timeout result: %+v", r)
	}
	r = CheckRuntime(context.Background(), fakePinger{err: errors.New("connection refused")})
	if r.Passed || r.Detail != "connection refused" {
		t.Fatalf("unexpected failure result: %+v", r)
	}
}

func TestCheckRuntimeAgainstDeliveryClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer srv.Close()

	client := delivery.NewClient(srv.URL+"/avatar/upload", srv.URL+"/avatar/speak", 0)
	if r := CheckRuntime(context.Background(), client); !r.Passed {
		t.Fatalf("any HTTP answer should count as reachable, got %s", r.Detail)
	}
}

func TestCheckSystemDepsProbesAnalyzer(t *testing.T) {
	dir := t.TempDir()
	analyzer := filepath.Join(dir, "rhubarb")
	if err := os.WriteFile(analyzer, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Audio.FFmpegBinary = filepath.Join(dir, "missing-ffmpeg")
	cfg.Rhubarb.Path = analyzer

	statuses := CheckSystemDeps(&cfg)
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	if statuses[0].Name != "FFmpeg" || statuses[0].Available {
		t.Fatalf("expected missing ffmpeg, got %+v", statuses[0])
	}
	if statuses[2].Name != "Rhubarb" || !statuses[2].Available || statuses[2].Command != analyzer {
		t.Fatalf("expected analyzer found at %s, got %+v", analyzer, statuses[2])
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAllChecksWorkingDirectories(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StagingDir = t.TempDir()
	cfg.Paths.StateDir = filepath.Join(t.TempDir(), "missing")

	results := RunAll(context.Background(), &cfg)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].Passed {
		t.Errorf("staging check failed: %s", results[0].Detail)
	}
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "State directory" {
		t.Fatalf("expected only the state directory to fail, got %+v", failed)
	}
}
