package document

import "strings"

// Paths is the view over the document's paths object.
type Paths struct {
	api *API
	raw Obj
}

// Templates lists the path templates in document order, skipping extension
// keys.
func (p Paths) Templates() []string {
	if p.raw == nil {
		return nil
	}
	var out []string
	for pair := p.raw.Oldest(); pair != nil; pair = pair.Next() {
		if isExtensionKey(pair.Key) {
			continue
		}
		out = append(out, pair.Key)
	}
	return out
}

// Get returns the path item registered under template.
func (p Paths) Get(template string) (PathItem, bool) {
	if isExtensionKey(template) {
		return PathItem{}, false
	}
	raw, ok := GetObject(p.raw, template)
	if !ok {
		return PathItem{}, false
	}
	return PathItem{api: p.api, raw: raw, template: template}, true
}

// Items returns one path item per template, in document order.
func (p Paths) Items() []PathItem {
	templates := p.Templates()
	out := make([]PathItem, 0, len(templates))
	for _, template := range templates {
		if item, ok := p.Get(template); ok {
			out = append(out, item)
		}
	}
	return out
}

// PathItem is the view over one path item. A path item may carry a $ref to
// another path item; field accessors fall back along the resolution chain
// when the local field is absent.
type PathItem struct {
	api      *API
	raw      Obj
	template string
}

func (p PathItem) Template() string { return p.template }

// Ref returns the local $ref, when present.
func (p PathItem) Ref() (string, bool) {
	value, ok := p.raw.Get("$ref")
	if !ok {
		return "", false
	}
	ref, ok := value.(string)
	return ref, ok
}

// Resolve follows the local $ref one step, yielding a path item with the
// same template but a different backing fragment.
func (p PathItem) Resolve() (PathItem, bool) {
	ref, ok := p.Ref()
	if !ok {
		return PathItem{}, false
	}
	target, ok := p.api.ResolveRef(ref)
	if !ok {
		return PathItem{}, false
	}
	raw, ok := target.(Obj)
	if !ok {
		return PathItem{}, false
	}
	return PathItem{api: p.api, raw: raw, template: p.template}, true
}

// chain returns the item followed by every referenced item, nearest first.
// The walk is bounded by a visited set keyed on the ref string, so callers
// need not assume acyclicity.
func (p PathItem) chain() []PathItem {
	items := []PathItem{p}
	seen := map[string]bool{}
	current := p
	for {
		ref, ok := current.Ref()
		if !ok || seen[ref] {
			return items
		}
		seen[ref] = true
		next, ok := current.Resolve()
		if !ok {
			return items
		}
		items = append(items, next)
		current = next
	}
}

// lookup returns the first value for key found along the resolution chain.
func (p PathItem) lookup(key string) (any, bool) {
	for _, item := range p.chain() {
		if value, ok := item.raw.Get(key); ok {
			return value, true
		}
	}
	return nil, false
}

func (p PathItem) Summary() string {
	value, _ := p.lookup("summary")
	s, _ := value.(string)
	return s
}

func (p PathItem) Description() string {
	value, _ := p.lookup("description")
	s, _ := value.(string)
	return s
}

// Servers returns the path-item server list, falling back along the
// resolution chain.
func (p PathItem) Servers() []Server {
	for _, item := range p.chain() {
		if _, ok := item.raw.Get("servers"); ok {
			return servers(p.api, item.raw)
		}
	}
	return nil
}

// Parameters returns the path-item level parameters, falling back along the
// resolution chain. Entries that are themselves references are resolved.
func (p PathItem) Parameters() []Parameter {
	value, ok := p.lookup("parameters")
	if !ok {
		return nil
	}
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	return parameters(p.api, items)
}

// httpMethods is the fixed iteration order for operations, keeping output
// deterministic across runs.
var httpMethods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// Operations yields one operation per HTTP method present along the
// resolution chain. The first occurrence of a method wins: a referenced
// item's operations are visible only for methods the referencing item does
// not itself define.
func (p PathItem) Operations() []Operation {
	var out []Operation
	seen := map[string]bool{}
	for _, item := range p.chain() {
		for _, method := range httpMethods {
			if seen[method] {
				continue
			}
			raw, ok := GetObject(item.raw, method)
			if !ok {
				continue
			}
			seen[method] = true
			out = append(out, Operation{api: p.api, raw: raw, method: method, pathItem: p})
		}
	}
	return out
}

// Operation looks up a single operation by method, case-insensitively.
func (p PathItem) Operation(method string) (Operation, bool) {
	method = strings.ToLower(method)
	for _, op := range p.Operations() {
		if op.method == method {
			return op, true
		}
	}
	return Operation{}, false
}

func parameters(api *API, items []any) []Parameter {
	out := make([]Parameter, 0, len(items))
	for _, item := range items {
		raw, ok := api.resolveObj(item)
		if !ok {
			continue
		}
		out = append(out, Parameter{api: api, raw: raw})
	}
	return out
}
