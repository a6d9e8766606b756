package deps

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Probe walks candidates in order and returns the first path that names an
// executable regular file. probed lists every candidate that was checked, in
// order, so callers can report the search when nothing matched. PATH is not
// consulted.
func Probe(candidates []string) (found string, probed []string, ok bool) {
	probed = make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if _, dup := seen[candidate]; dup {
			continue
		}
		seen[candidate] = struct{}{}
		probed = append(probed, candidate)
		info, err := os.Stat(candidate)
		if err == nil && isExecutable(info) {
			return candidate, probed, true
		}
	}
	return "", probed, false
}

// SidecarCandidates returns paths named by rel relative to the directory of
// the running executable. Missing executable information yields nil.
func SidecarCandidates(rel ...string) []string {
	exe, err := os.Executable()
	if err != nil || exe == "" {
		return nil
	}
	dir := filepath.Dir(exe)
	out := make([]string, 0, len(rel))
	for _, r := range rel {
		out = append(out, filepath.Join(dir, r))
	}
	return out
}

// CheckProbe reports a Status for a tool located through Probe.
func CheckProbe(name, description string, candidates []string) Status {
	status := Status{Name: name, Description: description}
	found, probed, ok := Probe(candidates)
	if ok {
		status.Command = found
		status.Available = true
		return status
	}
	if len(probed) > 0 {
		status.Command = probed[0]
	}
	status.Detail = fmt.Sprintf("not found (probed %s)", strings.Join(probed, ", "))
	return status
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
