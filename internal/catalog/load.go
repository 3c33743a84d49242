package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads, parses, normalizes and validates one quiz document.
// .json files are decoded as JSON, anything else as YAML.
func LoadFile(path string) (Quiz, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Quiz{}, fmt.Errorf("read quiz file: %w", err)
	}
	q, err := Parse(data, strings.ToLower(filepath.Ext(path)) == ".json")
	if err != nil {
		return Quiz{}, fmt.Errorf("%s: %w", path, err)
	}
	return q, nil
}

// Parse decodes a quiz document and runs Normalize on it.
func Parse(data []byte, isJSON bool) (Quiz, error) {
	var (
		q   Quiz
		err error
	)
	if isJSON {
		q, err = parseJSONQuiz(data)
	} else {
		q, err = parseYAMLQuiz(data)
	}
	if err != nil {
		return Quiz{}, err
	}
	return Normalize(q)
}

func parseJSONQuiz(data []byte) (Quiz, error) {
	var q Quiz
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&q); err != nil {
		return Quiz{}, fmt.Errorf("parse json: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Quiz{}, fmt.Errorf("parse json: multiple documents are not supported")
		}
		return Quiz{}, fmt.Errorf("parse json: %w", err)
	}
	return q, nil
}

func parseYAMLQuiz(data []byte) (Quiz, error) {
	var q Quiz
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&q); err != nil {
		return Quiz{}, fmt.Errorf("parse yaml: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Quiz{}, fmt.Errorf("parse yaml: multiple documents are not supported")
		}
		return Quiz{}, fmt.Errorf("parse yaml: %w", err)
	}
	return q, nil
}

// ImportDir loads every .json, .yaml and .yml file in dir into store, in
// file name order. It stops at the first file that fails.
func ImportDir(ctx context.Context, store Store, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read seed dir: %w", err)
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
		default:
			continue
		}
		q, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return n, err
		}
		if err := store.PutQuiz(ctx, q); err != nil {
			return n, fmt.Errorf("import %s: %w", e.Name(), err)
		}
		n++
	}
	return n, nil
}
