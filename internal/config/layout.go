package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/seat-inventory/internal/inventory"
)

// LoadLayoutOverrides reads geometry overrides from a YAML file such as:
//
//	seat_size: 28
//	seat_gap: 4
//	padding: 60
//	default_standing_size:
//	  width: 240
//
// An empty path returns zero Overrides, which keeps every default.
func LoadLayoutOverrides(path string) (inventory.Overrides, error) {
	var ov inventory.Overrides
	if path == "" {
		return ov, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ov, fmt.Errorf("read layout options: %w", err)
	}
	return ParseLayoutOverrides(data)
}

// ParseLayoutOverrides decodes YAML override data.  Unknown keys are
// rejected so a typo does not silently fall back to a default.
func ParseLayoutOverrides(data []byte) (inventory.Overrides, error) {
	var ov inventory.Overrides
	if len(data) == 0 {
		return ov, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ov); err != nil && !errors.Is(err, io.EOF) {
		return inventory.Overrides{}, fmt.Errorf("parse layout options: %w", err)
	}
	return ov, nil
}
