package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/accountex-org/ash-sparql/errors"
)

// settingsSchema validates raw settings documents before unmarshaling, so a
// typo fails with a field-level message instead of a silently ignored key.
const settingsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["endpoint"],
  "additionalProperties": false,
  "properties": {
    "endpoint": {"type": "string", "minLength": 1},
    "graph": {"type": "string"},
    "prefix_map": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    },
    "authentication": {
      "type": "object",
      "required": ["type"],
      "additionalProperties": false,
      "properties": {
        "type": {"enum": ["basic", "bearer", "custom"]},
        "username": {"type": "string"},
        "password": {"type": "string"},
        "token": {"type": "string"},
        "header": {"type": "string"},
        "value": {"type": "string"}
      }
    },
    "request_timeout_ms": {"type": "integer", "minimum": 0},
    "additional_headers": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "value"],
        "additionalProperties": false,
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "value": {"type": "string"}
        }
      }
    },
    "tls": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "ca_files": {"type": "array", "items": {"type": "string"}},
        "insecure_skip_verify": {"type": "boolean"},
        "min_version": {"enum": ["1.2", "1.3"]}
      }
    },
    "rate_per_second": {"type": "number", "minimum": 0},
    "rate_burst": {"type": "integer", "minimum": 0},
    "strict_decode": {"type": "boolean"}
  }
}`

// ValidateDocument checks a raw JSON settings document against the schema.
func ValidateDocument(data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(settingsSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return errors.WrapInvalid(err, "config", "ValidateDocument", "schema evaluation")
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return errors.WrapInvalid(
			fmt.Errorf("settings document invalid: %s", strings.Join(details, "; ")),
			"config", "ValidateDocument", "schema validation")
	}

	return nil
}

// LoadFile reads, schema-validates, and unmarshals a settings file. The
// format follows the extension: .json, or .yaml/.yml.
func LoadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapInvalid(err, "config", "LoadFile", "read file")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return Load(data)
	case ".yaml", ".yml":
		jsonData, err := yamlToJSON(data)
		if err != nil {
			return nil, errors.WrapInvalid(err, "config", "LoadFile", "YAML conversion")
		}
		return Load(jsonData)
	default:
		return nil, errors.WrapInvalid(
			fmt.Errorf("unsupported settings file extension %q", filepath.Ext(path)),
			"config", "LoadFile", "format detection")
	}
}

// Load schema-validates and unmarshals a raw JSON settings document,
// applying defaults and the full semantic Validate pass.
func Load(data []byte) (*Settings, error) {
	if err := ValidateDocument(data); err != nil {
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, errors.WrapInvalid(err, "config", "Load", "unmarshal")
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return settings, nil
}

// yamlToJSON converts a YAML document to JSON for schema validation
func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}
