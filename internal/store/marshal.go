package store

import (
	"encoding/json"
	"fmt"

	"github.com/anatawa12/sai/internal/types"
)

// marshalNames converts a list of names to canonical JSON TEXT for storage.
// A nil list is stored as [].
func marshalNames(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	data, err := types.MarshalCanonical(names)
	if err != nil {
		return "", fmt.Errorf("marshal names: %w", err)
	}
	return string(data), nil
}

// unmarshalNames parses a stored JSON array of names. Never returns nil.
func unmarshalNames(data string) ([]string, error) {
	names := []string{}
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		return nil, fmt.Errorf("unmarshal names: %w", err)
	}
	return names, nil
}
