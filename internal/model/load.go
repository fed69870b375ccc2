package model

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// LoadRecord reads a property record from a JSON or YAML file. The format
// is chosen by extension; anything that is not .yaml/.yml is parsed as JSON.
func LoadRecord(path string) (*PropertyRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "model: read record %s", path)
	}

	var rec PropertyRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &rec); err != nil {
			return nil, eris.Wrapf(err, "model: parse yaml record %s", path)
		}
	default:
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, eris.Wrapf(err, "model: parse json record %s", path)
		}
	}

	if rec.ID == "" {
		return nil, eris.Errorf("model: record %s has no id", path)
	}
	return &rec, nil
}

// LoadRecordDir reads every .json, .yaml, and .yml file in a directory as
// a property record, in lexical filename order.
func LoadRecordDir(dir string) ([]*PropertyRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "model: read record dir %s", dir)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, eris.Errorf("model: no record files in %s", dir)
	}

	records := make([]*PropertyRecord, 0, len(paths))
	for _, p := range paths {
		rec, err := LoadRecord(p)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
