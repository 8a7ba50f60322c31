// Package batch runs the analysis pipeline across a recording corpus and
// collects per-file reports into a CSV for downstream statistics.
//
// Corpora are laid out one cohort per top-level directory, for example
// nfvPPA/, lvPPA/, svPPA/, Controls/. The cohort label travels with every
// result row so group comparisons need no extra bookkeeping.
package batch

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Cohort subtype labels derived from the corpus directory layout.
const (
	SubtypeNFV      = "nfvppa"
	SubtypeLV       = "lvppa"
	SubtypeSV       = "svppa"
	SubtypeControls = "controls"
	SubtypeUnknown  = "unknown"
)

// Subtypes lists the known cohort labels, in canonical order.
func Subtypes() []string {
	return []string{SubtypeNFV, SubtypeLV, SubtypeSV, SubtypeControls}
}

// FindAudioFiles recursively collects WAV files under root. Paths are
// returned sorted and deduplicated so runs are reproducible.
func FindAudioFiles(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".wav") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	sort.Strings(files)
	files = dedupSorted(files)
	return files, nil
}

// SubtypeFromPath maps a recording path onto its cohort label using the
// first directory level below root. The directory name is lowercased and
// stripped of separators before matching, so "nfv_PPA", "nfvppa" and
// "NFV-ppa" all land in the same cohort. Files directly under root have no
// cohort directory and classify as unknown.
func SubtypeFromPath(path, root string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return SubtypeUnknown
	}

	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) < 2 {
		return SubtypeUnknown
	}

	name := strings.ToLower(parts[0])
	name = strings.ReplaceAll(name, "_", "")
	name = strings.ReplaceAll(name, "-", "")

	switch {
	case strings.Contains(name, "nfv"):
		return SubtypeNFV
	case strings.Contains(name, "lv") && !strings.Contains(name, "sv"):
		return SubtypeLV
	case strings.Contains(name, "sv"):
		return SubtypeSV
	case strings.Contains(name, "control"):
		return SubtypeControls
	}
	return SubtypeUnknown
}

func dedupSorted(paths []string) []string {
	if len(paths) < 2 {
		return paths
	}
	out := paths[:1]
	for i := 1; i < len(paths); i++ {
		if paths[i] != paths[i-1] {
			out = append(out, paths[i])
		}
	}
	return out
}
