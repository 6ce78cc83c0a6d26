package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	gterrors "github.com/gtrends/gtrends-go/pkg/errors"
)

// LoadFile merges a configuration file into the store. The format is
// chosen by extension: .toml, .yaml/.yml or .json.
func (s *Store) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileError(path, err, "Failed to read configuration file %s", path)
	}

	partial, err := decodeFile(path, data)
	if err != nil {
		return err
	}
	return s.Load(partial)
}

func decodeFile(path string, data []byte) (map[string]any, error) {
	partial := map[string]any{}
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &partial); err != nil {
			return nil, fileError(path, err, "Failed to parse TOML configuration %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &partial); err != nil {
			return nil, fileError(path, err, "Failed to parse YAML configuration %s", path)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&partial); err != nil {
			return nil, fileError(path, err, "Failed to parse JSON configuration %s", path)
		}
	default:
		return nil, gterrors.NewConfiguration("", path, ".toml, .yaml, .yml or .json",
			"Unsupported configuration file format: %q", ext)
	}
	return partial, nil
}

func fileError(path string, cause error, format string, args ...any) error {
	e := gterrors.NewConfiguration("", path, "", format, args...)
	e.Cause = cause
	e.Context = gterrors.Fields{"file": path}
	return e
}
