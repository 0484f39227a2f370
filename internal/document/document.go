// Package document exposes a lazily navigable, read-only view over a
// resolved OpenAPI 3.1 document. Nodes wrap raw fragments of the document
// tree and follow $ref indirection on demand; they are value types recreated
// on every accessor call and never cache anything.
package document

import (
	"fmt"
	"net/url"
	"strings"
)

// Error is the single document-level failure category: a message plus an
// optional JSON Pointer locating the offending fragment.
type Error struct {
	Message string
	Pointer string
}

func (e *Error) Error() string {
	if e.Pointer != "" {
		return fmt.Sprintf("%s (at %s)", e.Message, e.Pointer)
	}
	return e.Message
}

func errorf(pointer, format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Pointer: pointer}
}

// Dialect describes a supported JSON Schema dialect.
type Dialect struct {
	URI         string
	DefsKeyword string
}

var (
	DialectOAS31  = &Dialect{URI: "https://spec.openapis.org/oas/3.1/dialect/base", DefsKeyword: "$defs"}
	Dialect202012 = &Dialect{URI: "https://json-schema.org/draft/2020-12/schema", DefsKeyword: "$defs"}
	Dialect201909 = &Dialect{URI: "https://json-schema.org/draft/2019-09/schema", DefsKeyword: "$defs"}
)

var dialects = map[string]*Dialect{
	DialectOAS31.URI:  DialectOAS31,
	Dialect202012.URI: Dialect202012,
	Dialect201909.URI: Dialect201909,
}

// API is the root of the document graph. It owns the raw tree; every other
// node type is a projection holding a back-reference to it.
type API struct {
	raw     Obj
	dialect *Dialect
}

// Load wraps an already parsed and structurally validated raw document.
// The root must be an object, and jsonSchemaDialect, when present, must name
// a known dialect.
func Load(root any) (*API, error) {
	obj, ok := root.(Obj)
	if !ok {
		return nil, &Error{Message: "document root is not an object"}
	}

	dialect := DialectOAS31
	if value, present := obj.Get("jsonSchemaDialect"); present {
		s, ok := value.(string)
		if !ok {
			return nil, errorf("/jsonSchemaDialect", "jsonSchemaDialect is not a string")
		}
		u, err := url.Parse(s)
		if err != nil || !u.IsAbs() {
			return nil, errorf("/jsonSchemaDialect", "jsonSchemaDialect %q is not a well-formed URI", s)
		}
		dialect, ok = dialects[s]
		if !ok {
			return nil, errorf("/jsonSchemaDialect", "unknown JSON Schema dialect %q", s)
		}
	}

	return &API{raw: obj, dialect: dialect}, nil
}

func (a *API) Raw() Obj          { return a.raw }
func (a *API) Dialect() *Dialect { return a.dialect }

func (a *API) Title() string {
	info, _ := GetObject(a.raw, "info")
	return GetString(info, "title")
}

func (a *API) Version() string {
	info, _ := GetObject(a.raw, "info")
	return GetString(info, "version")
}

func (a *API) Description() string {
	info, _ := GetObject(a.raw, "info")
	return GetString(info, "description")
}

// Servers returns the API-level server list.
func (a *API) Servers() []Server {
	return servers(a, a.raw)
}

// Paths returns the paths object, absent when the document declares none.
func (a *API) Paths() (Paths, bool) {
	raw, ok := GetObject(a.raw, "paths")
	return Paths{api: a, raw: raw}, ok
}

// ResolveRef resolves an intra-document $ref against the raw tree. External
// references are the resolution engine's concern and report as absent here.
func (a *API) ResolveRef(ref string) (any, bool) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, false
	}
	if u.Scheme != "" || u.Host != "" || u.Opaque != "" || u.Path != "" {
		return nil, false
	}
	return walkPointer(a.raw, u.Fragment)
}

// resolveObj follows a $ref chain starting from node until it reaches an
// object without a $ref. Chains are bounded by a visited set, so cyclic
// references terminate at the last new object seen.
func (a *API) resolveObj(node any) (Obj, bool) {
	obj, ok := node.(Obj)
	if !ok {
		return nil, false
	}
	seen := map[string]bool{}
	for {
		ref, present := obj.Get("$ref")
		refStr, isStr := ref.(string)
		if !present || !isStr || seen[refStr] {
			return obj, true
		}
		seen[refStr] = true
		target, ok := a.ResolveRef(refStr)
		if !ok {
			return obj, true
		}
		next, ok := target.(Obj)
		if !ok {
			return obj, true
		}
		obj = next
	}
}

func servers(api *API, owner Obj) []Server {
	items, ok := GetArray(owner, "servers")
	if !ok {
		return nil
	}
	out := make([]Server, 0, len(items))
	for _, item := range items {
		obj, ok := item.(Obj)
		if !ok {
			continue
		}
		out = append(out, Server{api: api, raw: obj})
	}
	return out
}

func isExtensionKey(key string) bool {
	return strings.HasPrefix(key, "x-")
}
