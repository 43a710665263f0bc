package partition

import (
	"encoding/json"
	"fmt"
	"os"
)

// ReadAssignmentFile reads a JSON object mapping node IDs to district IDs.
//
//	{"A": "D1", "B": "D1", "C": "D2", "D": "D2"}
func ReadAssignmentFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	var assignment map[string]string
	if err := json.Unmarshal(data, &assignment); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return assignment, nil
}

// WriteAssignmentFile writes a node→district assignment as indented JSON.
// The file is created with 0644 permissions.
func WriteAssignmentFile(assignment map[string]string, path string) error {
	data, err := json.MarshalIndent(assignment, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
