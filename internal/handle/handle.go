// Package handle converts OpenAPI operations into self-contained tool
// handles: a parameter schema, an HTTP request template, and per-status
// response rendering templates, for consumption by a tool-calling model.
package handle

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/toolcog/tool-api/internal/document"
	"github.com/toolcog/tool-api/internal/shake"
)

var (
	// ErrNoServers reports an operation with no server at any precedence
	// level.
	ErrNoServers = errors.New("no servers defined")
	// ErrNoName reports an operation with no derivable handle name.
	ErrNoName = errors.New("no handle name")
)

// Handle is the generated tool descriptor.
type Handle struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Parameters  any    `json:"parameters" yaml:"parameters"`
	Handler     string `json:"handler" yaml:"handler"`
	Request     any    `json:"request" yaml:"request"`
	Responses   any    `json:"responses,omitempty" yaml:"responses,omitempty"`
}

// Options configure handle generation.
type Options struct {
	// Server overrides server selection with an explicit base URL.
	Server string
	// Transform, when set, is applied to every schema fragment before it is
	// rewritten into the handle's defs namespace.
	Transform func(any) any
}

// Generator produces tool handles. It holds no per-operation state; a single
// generator may be used for every operation of a document, and concurrently
// for reads.
type Generator struct {
	shaker  shake.Shaker
	options Options
}

func New(options Options) *Generator {
	return &Generator{shaker: shake.New(), options: options}
}

// NewWithShaker substitutes the tree-shaking service, mainly for tests.
func NewWithShaker(shaker shake.Shaker, options Options) *Generator {
	return &Generator{shaker: shaker, options: options}
}

// Handle assembles the tool handle for one operation.
func (g *Generator) Handle(op document.Operation) (*Handle, error) {
	name, err := Name(op)
	if err != nil {
		return nil, err
	}

	parameters, request, err := g.request(op)
	if err != nil {
		return nil, fmt.Errorf("generating request template for %s: %w", name, err)
	}

	responses, err := g.responses(op)
	if err != nil {
		return nil, fmt.Errorf("generating response templates for %s: %w", name, err)
	}

	description := op.Description()
	if description == "" {
		description = op.Summary()
	}

	h := &Handle{
		Name:        name,
		Description: description,
		Parameters:  parameters,
		Handler:     "http",
		Request:     request,
	}
	if responses != nil {
		h.Responses = responses
	}
	return h, nil
}

var nameSanitizer = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Name derives the handle name from the operationId, falling back to
// "<METHOD> <path>". Characters outside [A-Za-z0-9_-] are replaced with "_".
func Name(op document.Operation) (string, error) {
	name := op.OperationID()
	if name == "" {
		if op.Path() == "" {
			return "", fmt.Errorf("%w for %s operation", ErrNoName, op.Method())
		}
		name = op.Method() + " " + op.Path()
	}
	return nameSanitizer.ReplaceAllString(name, "_"), nil
}
