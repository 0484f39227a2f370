// Package loader reads an OpenAPI document, runs structural validation, and
// hands the raw node tree to the document graph.
package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/pb33f/libopenapi"
	validator "github.com/pb33f/libopenapi-validator"
	"go.yaml.in/yaml/v4"

	"github.com/toolcog/tool-api/internal/document"
)

type Options struct {
	// SkipValidation bypasses structural validation of the document.
	SkipValidation bool
}

type Result struct {
	API      *document.API
	Version  string
	Warnings []string
	RawData  []byte
}

func LoadFile(path string, opts *Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spec file: %w", err)
	}
	result, err := Load(data, opts)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return result, nil
}

// Load parses and validates OpenAPI document bytes (JSON or YAML).
// Validation is delegated entirely to libopenapi; the document graph only
// assumes a structurally sound tree.
func Load(data []byte, opts *Options) (*Result, error) {
	if opts == nil {
		opts = &Options{}
	}

	doc, err := libopenapi.NewDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parsing OpenAPI document: %w", err)
	}

	version := doc.GetVersion()
	if !strings.HasPrefix(version, "3.") {
		return nil, fmt.Errorf("unsupported OpenAPI version: %s (only 3.x supported)", version)
	}

	var warnings []string
	if !opts.SkipValidation {
		v, errs := validator.NewValidator(doc)
		if len(errs) > 0 {
			return nil, fmt.Errorf("creating document validator: %w", errs[0])
		}
		valid, validationErrs := v.ValidateDocument()
		if !valid {
			messages := make([]string, 0, len(validationErrs))
			for _, e := range validationErrs {
				messages = append(messages, e.Message)
			}
			return nil, fmt.Errorf("invalid OpenAPI document: %s", strings.Join(messages, "; "))
		}
	}
	if strings.HasPrefix(version, "3.0") {
		warnings = append(warnings, "OpenAPI 3.0.x detected; jsonSchemaDialect and full 3.1 schema semantics unavailable")
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parsing document tree: %w", err)
	}
	raw, err := document.FromYAML(&node)
	if err != nil {
		return nil, fmt.Errorf("converting document tree: %w", err)
	}

	api, err := document.Load(raw)
	if err != nil {
		return nil, err
	}

	return &Result{
		API:      api,
		Version:  version,
		Warnings: warnings,
		RawData:  data,
	}, nil
}
