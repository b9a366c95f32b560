package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// Diff compares two snapshot encodings and returns a unified diff of their
// canonical pretty forms. An empty string means the ledger content matches;
// generated_at and snapshot_rev are ignored since they vary per export.
func Diff(want, got []byte) (string, error) {
	wantLines, err := comparableLines(want)
	if err != nil {
		return "", fmt.Errorf("bad expected snapshot: %w", err)
	}
	gotLines, err := comparableLines(got)
	if err != nil {
		return "", fmt.Errorf("bad actual snapshot: %w", err)
	}

	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        wantLines,
		B:        gotLines,
		FromFile: "expected",
		ToFile:   "actual",
		Context:  3,
	})
}

// comparableLines re-encodes a snapshot without its volatile meta fields and
// splits it into lines for diffing.
func comparableLines(data []byte) ([]string, error) {
	s, err := Parse(data)
	if err != nil {
		return nil, err
	}
	s.Meta.GeneratedAt = ""
	s.Meta.SnapshotRev = ""

	pretty, err := json.MarshalIndent(buildOrderedSnapshot(s), "", "  ")
	if err != nil {
		return nil, err
	}
	return difflib.SplitLines(string(pretty) + "\n"), nil
}
