package snapshot

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// CanonicalJSON produces a deterministic JSON encoding following JCS-like rules:
// - Keys sorted lexicographically
// - No insignificant whitespace
// - UTF-8 encoding
// - Consistent null/empty handling (omitted via omitempty tags)
func CanonicalJSON(s *Snapshot) ([]byte, error) {
	ordered := buildOrderedSnapshot(s)

	// Use a custom encoder that doesn't escape HTML and uses no indentation
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(ordered); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	// Remove trailing newline added by Encode
	result := buf.Bytes()
	if len(result) > 0 && result[len(result)-1] == '\n' {
		result = result[:len(result)-1]
	}

	return result, nil
}

// ComputeSnapshotRev computes the sha256 hash of canonical JSON bytes.
// Returns "sha256:<hex>" format.
func ComputeSnapshotRev(data []byte) string {
	hash := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(hash[:])
}

// buildOrderedSnapshot creates an ordered map structure for canonical JSON.
// Order: meta, overrides, persons.
func buildOrderedSnapshot(s *Snapshot) orderedMap {
	result := make(orderedMap, 0, 3)

	result = append(result, keyValue{"meta", buildOrderedMeta(&s.Meta)})

	if len(s.Overrides) > 0 {
		result = append(result, keyValue{"overrides", buildOrderedOverrides(s.Overrides)})
	}
	if len(s.Persons) > 0 {
		result = append(result, keyValue{"persons", buildOrderedPersons(s.Persons)})
	}

	return result
}

// orderedMap is a slice of key-value pairs that marshals as a JSON object
// with keys in the order they appear in the slice.
type orderedMap []keyValue

type keyValue struct {
	Key   string
	Value interface{}
}

func (om orderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, kv := range om {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyJSON, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')

		valJSON, err := json.Marshal(kv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(valJSON)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func buildOrderedMeta(m *Meta) orderedMap {
	result := make(orderedMap, 0, 4)

	// Fields in lexicographic order
	if m.GeneratedAt != "" {
		result = append(result, keyValue{"generated_at", m.GeneratedAt})
	}
	result = append(result, keyValue{"schema_version", m.SchemaVersion})
	if m.SnapshotRev != "" {
		result = append(result, keyValue{"snapshot_rev", m.SnapshotRev})
	}
	result = append(result, keyValue{"team_id", m.TeamID})

	return result
}

func buildOrderedPersons(persons map[string]PersonEntry) orderedMap {
	uuids := make([]string, 0, len(persons))
	for uuid := range persons {
		uuids = append(uuids, uuid)
	}
	sort.Strings(uuids)

	result := make(orderedMap, 0, len(persons))
	for _, uuid := range uuids {
		p := persons[uuid]
		entry := orderedMap{
			{"created_at", p.CreatedAt},
			{"version", p.Version},
		}
		result = append(result, keyValue{uuid, entry})
	}
	return result
}

func buildOrderedOverrides(overrides map[string]OverrideEntry) orderedMap {
	uuids := make([]string, 0, len(overrides))
	for uuid := range overrides {
		uuids = append(uuids, uuid)
	}
	sort.Strings(uuids)

	result := make(orderedMap, 0, len(overrides))
	for _, uuid := range uuids {
		o := overrides[uuid]
		entry := orderedMap{
			{"oldest_event", o.OldestEvent},
			{"override_person_id", o.OverridePersonID},
			{"version", o.Version},
		}
		result = append(result, keyValue{uuid, entry})
	}
	return result
}

// PrettyJSON produces human-readable indented JSON (non-canonical).
// Useful for debugging but not for deterministic comparison.
func PrettyJSON(s *Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
