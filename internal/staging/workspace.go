package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const workspacePrefix = "run-"

// Workspace is the per-run scratch directory holding normalized audio and raw
// analyzer output until the run finishes.
type Workspace struct {
	Dir string
}

// NewWorkspace creates <stagingDir>/run-<requestID>.
func NewWorkspace(stagingDir, requestID string) (*Workspace, error) {
	stagingDir = strings.TrimSpace(stagingDir)
	requestID = strings.TrimSpace(requestID)
	if stagingDir == "" {
		return nil, fmt.Errorf("create workspace: staging directory not configured")
	}
	if requestID == "" || strings.ContainsAny(requestID, `/\`) {
		return nil, fmt.Errorf("create workspace: invalid request id %q", requestID)
	}
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	dir := filepath.Join(stagingDir, workspacePrefix+requestID)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{Dir: dir}, nil
}

// Path joins name onto the workspace directory.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// Remove deletes the workspace and everything in it.
func (w *Workspace) Remove() error {
	if w == nil || w.Dir == "" {
		return nil
	}
	return os.RemoveAll(w.Dir)
}
