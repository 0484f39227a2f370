package document

// Responses is the view over an operation's responses object.
type Responses struct {
	api *API
	raw Obj
}

// Codes lists the response status codes in document order, skipping
// extension keys.
func (r Responses) Codes() []string {
	if r.raw == nil {
		return nil
	}
	var out []string
	for pair := r.raw.Oldest(); pair != nil; pair = pair.Next() {
		if isExtensionKey(pair.Key) {
			continue
		}
		out = append(out, pair.Key)
	}
	return out
}

// Get returns the response registered under code, following references.
func (r Responses) Get(code string) (Response, bool) {
	value, ok := r.raw.Get(code)
	if !ok {
		return Response{}, false
	}
	raw, ok := r.api.resolveObj(value)
	if !ok {
		return Response{}, false
	}
	return Response{api: r.api, raw: raw, code: code}, true
}

// All returns every response in document order.
func (r Responses) All() []Response {
	codes := r.Codes()
	out := make([]Response, 0, len(codes))
	for _, code := range codes {
		if resp, ok := r.Get(code); ok {
			out = append(out, resp)
		}
	}
	return out
}

// Response is the view over a single response.
type Response struct {
	api  *API
	raw  Obj
	code string
}

func (r Response) Code() string        { return r.code }
func (r Response) Description() string { return GetString(r.raw, "description") }

// Content returns the response's media types in document order.
func (r Response) Content() []MediaType {
	return content(r.api, r.raw)
}

// Headers returns the response headers in document order, following
// references.
func (r Response) Headers() []Header {
	raw, ok := GetObject(r.raw, "headers")
	if !ok {
		return nil
	}
	var out []Header
	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		obj, ok := r.api.resolveObj(pair.Value)
		if !ok {
			continue
		}
		out = append(out, Header{api: r.api, raw: obj, name: pair.Key})
	}
	return out
}

// Links returns the response links in document order, following references.
func (r Response) Links() []Link {
	raw, ok := GetObject(r.raw, "links")
	if !ok {
		return nil
	}
	var out []Link
	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		obj, ok := r.api.resolveObj(pair.Value)
		if !ok {
			continue
		}
		out = append(out, Link{api: r.api, raw: obj, name: pair.Key})
	}
	return out
}

// Header is the view over a response header.
type Header struct {
	api  *API
	raw  Obj
	name string
}

func (h Header) Name() string        { return h.name }
func (h Header) Description() string { return GetString(h.raw, "description") }
func (h Header) Required() bool      { return GetBool(h.raw, "required") }

func (h Header) Schema() (Obj, bool) {
	return GetObject(h.raw, "schema")
}

// Link is the view over a response link.
type Link struct {
	api  *API
	raw  Obj
	name string
}

func (l Link) Name() string         { return l.name }
func (l Link) OperationID() string  { return GetString(l.raw, "operationId") }
func (l Link) OperationRef() string { return GetString(l.raw, "operationRef") }
func (l Link) Description() string  { return GetString(l.raw, "description") }

// Callback is the view over a named callback: an expression mapped to a
// path item.
type Callback struct {
	api  *API
	raw  Obj
	name string
}

func (c Callback) Name() string { return c.name }

// Expressions lists the callback's runtime expressions in document order.
func (c Callback) Expressions() []string {
	var out []string
	for pair := c.raw.Oldest(); pair != nil; pair = pair.Next() {
		if isExtensionKey(pair.Key) {
			continue
		}
		out = append(out, pair.Key)
	}
	return out
}

// PathItem returns the path item registered under expression.
func (c Callback) PathItem(expression string) (PathItem, bool) {
	raw, ok := GetObject(c.raw, expression)
	if !ok {
		return PathItem{}, false
	}
	return PathItem{api: c.api, raw: raw, template: expression}, true
}
