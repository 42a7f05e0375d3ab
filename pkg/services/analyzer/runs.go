package analyzer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoArtifact reports a run that has raw records but was never
// analyzed.
var ErrNoArtifact = fmt.Errorf("artifact not found")

// ListRuns returns the run directory names under root, newest first.
// The timestamped naming scheme makes lexical order chronological.
func ListRuns(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list runs in %s: %w", root, err)
	}
	var runs []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "run-") {
			runs = append(runs, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(runs)))
	return runs, nil
}

// ReadArtifact loads one derived artifact without decoding it into a
// typed model. The server serves these verbatim.
func ReadArtifact(runDir, name string) (json.RawMessage, error) {
	data, err := os.ReadFile(filepath.Join(runDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoArtifact
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}
