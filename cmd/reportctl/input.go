package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/anime-shed/mindtrack-report/pkg/models"
)

var errEmptyInput = errors.New("input file is empty")

// loadRequest reads a classification result from a JSON or YAML file.
// The file holds either the bare result or a {result, source_preview}
// envelope.
func loadRequest(path string) (*models.ReportRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%s: %w", path, errEmptyInput)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if data, err = yamlToJSON(data); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	req, err := decodeRequest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return req, nil
}

// yamlToJSON converts a YAML document to JSON so results decode through
// the same unmarshalers whatever the file format
func yamlToJSON(data []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return json.Marshal(doc)
}

func decodeRequest(data []byte) (*models.ReportRequest, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if _, ok := probe["result"]; ok {
		var req models.ReportRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, err
		}
		return &req, nil
	}

	var result models.ClassificationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &models.ReportRequest{Result: &result}, nil
}
