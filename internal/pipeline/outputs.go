package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"mouthpiece/internal/delivery"
	"mouthpiece/internal/fileutil"
	"mouthpiece/internal/rhubarb"
	"mouthpiece/internal/services"
)

const (
	lipSyncSuffix  = ".lipsync.json"
	lockSuffix     = ".lock"
	lockRetryDelay = 50 * time.Millisecond
	outputFileMode = 0o644
)

// OutputPaths lists the files written for prefix in the order they are
// produced: raw analyzer export, packaged lipsync JSON, normalized audio.
func OutputPaths(prefix, rawExt string) []string {
	return []string{
		prefix + rawExt,
		prefix + lipSyncSuffix,
		prefix + ".wav",
	}
}

// writeOutputs persists a run's artifacts under prefix. Concurrent runs
// sharing a prefix are serialized through <prefix>.lock.
func writeOutputs(ctx context.Context, prefix string, out rhubarb.Output, bundle delivery.Bundle, wavPath string) ([]string, error) {
	prefix = filepath.Clean(strings.TrimSpace(prefix))
	if err := os.MkdirAll(filepath.Dir(prefix), 0o755); err != nil {
		return nil, writeError("create output dir", err)
	}

	lock := flock.New(prefix + lockSuffix)
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, writeError("lock "+lock.Path(), err)
	}
	if !locked {
		return nil, writeError("lock "+lock.Path(), fmt.Errorf("lock not acquired"))
	}
	defer func() { _ = lock.Unlock() }()

	paths := OutputPaths(prefix, out.Format.Extension())
	if err := fileutil.WriteFileAtomic(paths[0], out.Data, outputFileMode); err != nil {
		return nil, writeError("write raw export", err)
	}
	if err := fileutil.WriteFileAtomic(paths[1], bundle.LipSync.Content, outputFileMode); err != nil {
		return nil, writeError("write lipsync", err)
	}
	if err := fileutil.CopyFileVerified(wavPath, paths[2]); err != nil {
		return nil, writeError("copy audio", err)
	}
	return paths, nil
}

func writeError(op string, err error) error {
	return services.Wrap(services.ErrEncode, StageWrite, op, "", err)
}
