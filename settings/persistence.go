package settings

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads a settings file: a JSON array of Record objects. Missing
// numeric fields default to the Settings zero value (passthrough),
// matching the teacher's tolerance for partially-specified files.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings file %s: %w", path, err)
	}
	var table []Record
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parsing settings file %s: %w", path, err)
	}
	return table, nil
}

// LoadRouter reads a settings file and builds a Router from it, the
// convenience path cmd/arpcli uses at startup.
func LoadRouter(path string) (*Router, error) {
	table, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewRouter(table), nil
}
