package document

import "strings"

// Operation is the view over a single HTTP operation. Operations are not
// themselves referenceable, so unlike PathItem there is no field fallback.
type Operation struct {
	api      *API
	raw      Obj
	method   string
	pathItem PathItem
}

func (o Operation) API() *API          { return o.api }
func (o Operation) Raw() Obj           { return o.raw }
func (o Operation) PathItem() PathItem { return o.pathItem }

// Method returns the HTTP method in upper case.
func (o Operation) Method() string { return strings.ToUpper(o.method) }

// Path returns the owning path template.
func (o Operation) Path() string { return o.pathItem.template }

func (o Operation) OperationID() string { return GetString(o.raw, "operationId") }
func (o Operation) Summary() string     { return GetString(o.raw, "summary") }
func (o Operation) Description() string { return GetString(o.raw, "description") }
func (o Operation) Deprecated() bool    { return GetBool(o.raw, "deprecated") }

func (o Operation) Tags() []string {
	items, ok := GetArray(o.raw, "tags")
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Servers returns the operation-level server list; no fallback, the server
// selection precedence is the caller's concern.
func (o Operation) Servers() []Server {
	return servers(o.api, o.raw)
}

// Parameters returns the operation's own parameters.
func (o Operation) Parameters() []Parameter {
	items, ok := GetArray(o.raw, "parameters")
	if !ok {
		return nil
	}
	return parameters(o.api, items)
}

// AllParameters concatenates operation parameters with path-item parameters.
// A path-item parameter is dropped when an operation parameter with the same
// (name, location) key exists; operation parameters come first.
func (o Operation) AllParameters() []Parameter {
	own := o.Parameters()
	seen := make(map[ParameterKey]bool, len(own))
	for _, p := range own {
		seen[p.Key()] = true
	}
	out := own
	for _, p := range o.pathItem.Parameters() {
		if seen[p.Key()] {
			continue
		}
		seen[p.Key()] = true
		out = append(out, p)
	}
	return out
}

// RequestBody returns the operation's request body, following references.
func (o Operation) RequestBody() (RequestBody, bool) {
	value, ok := o.raw.Get("requestBody")
	if !ok {
		return RequestBody{}, false
	}
	raw, ok := o.api.resolveObj(value)
	if !ok {
		return RequestBody{}, false
	}
	return RequestBody{api: o.api, raw: raw}, true
}

// Responses returns the operation's responses object.
func (o Operation) Responses() (Responses, bool) {
	raw, ok := GetObject(o.raw, "responses")
	if !ok {
		return Responses{}, false
	}
	return Responses{api: o.api, raw: raw}, true
}

// Callbacks returns the operation's callbacks in document order.
func (o Operation) Callbacks() []Callback {
	raw, ok := GetObject(o.raw, "callbacks")
	if !ok {
		return nil
	}
	var out []Callback
	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		if isExtensionKey(pair.Key) {
			continue
		}
		obj, ok := o.api.resolveObj(pair.Value)
		if !ok {
			continue
		}
		out = append(out, Callback{api: o.api, raw: obj, name: pair.Key})
	}
	return out
}

// ParameterKey identifies a parameter; uniqueness is defined by
// (name, location).
type ParameterKey struct {
	Name string
	In   string
}

// Parameter is the view over a (possibly reference-resolved) parameter.
type Parameter struct {
	api *API
	raw Obj
}

func (p Parameter) Raw() Obj            { return p.raw }
func (p Parameter) Name() string        { return GetString(p.raw, "name") }
func (p Parameter) In() string          { return GetString(p.raw, "in") }
func (p Parameter) Required() bool      { return GetBool(p.raw, "required") }
func (p Parameter) Description() string { return GetString(p.raw, "description") }
func (p Parameter) Deprecated() bool    { return GetBool(p.raw, "deprecated") }

func (p Parameter) Key() ParameterKey {
	return ParameterKey{Name: p.Name(), In: p.In()}
}

// Schema returns the parameter schema when it is object-valued; boolean
// schemas and absent schemas report as absent.
func (p Parameter) Schema() (Obj, bool) {
	return GetObject(p.raw, "schema")
}

// Examples returns the parameter's named examples in document order.
func (p Parameter) Examples() []Example {
	return examples(p.api, p.raw)
}

// RequestBody is the view over a request body.
type RequestBody struct {
	api *API
	raw Obj
}

func (b RequestBody) Required() bool      { return GetBool(b.raw, "required") }
func (b RequestBody) Description() string { return GetString(b.raw, "description") }

// Content returns the body's media types in document order.
func (b RequestBody) Content() []MediaType {
	return content(b.api, b.raw)
}

// MediaType is the view over one content-type entry of a request body or
// response.
type MediaType struct {
	api  *API
	raw  Obj
	name string
}

func (m MediaType) Name() string { return m.name }

func (m MediaType) Schema() (Obj, bool) {
	return GetObject(m.raw, "schema")
}

func (m MediaType) Examples() []Example {
	return examples(m.api, m.raw)
}

func content(api *API, owner Obj) []MediaType {
	raw, ok := GetObject(owner, "content")
	if !ok {
		return nil
	}
	var out []MediaType
	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		obj, ok := pair.Value.(Obj)
		if !ok {
			continue
		}
		out = append(out, MediaType{api: api, raw: obj, name: pair.Key})
	}
	return out
}

// Example is the view over a named example.
type Example struct {
	api  *API
	raw  Obj
	name string
}

func (e Example) Name() string        { return e.name }
func (e Example) Summary() string     { return GetString(e.raw, "summary") }
func (e Example) Description() string { return GetString(e.raw, "description") }

func (e Example) Value() (any, bool) {
	return e.raw.Get("value")
}

func examples(api *API, owner Obj) []Example {
	raw, ok := GetObject(owner, "examples")
	if !ok {
		return nil
	}
	var out []Example
	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		obj, ok := api.resolveObj(pair.Value)
		if !ok {
			continue
		}
		out = append(out, Example{api: api, raw: obj, name: pair.Key})
	}
	return out
}
