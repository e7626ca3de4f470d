package util

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SaveJson writes data as indented JSON, creating parent directories.
func SaveJson(path string, data interface{}) error {
	bs, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return SaveBytes(path, bs)
}

// SaveBytes writes bs to path, creating parent directories.
func SaveBytes(path string, bs []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, bs, 0644)
}

// ReadJson decodes the JSON file at path into out.
func ReadJson(path string, out interface{}) error {
	bs, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(bs, out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
