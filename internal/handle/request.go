package handle

import (
	"fmt"
	"strings"

	"github.com/toolcog/tool-api/internal/document"
	"github.com/toolcog/tool-api/internal/shake"
)

// defsURI is the defs namespace shared by all schema fragments of one
// request or response template.
const defsURI = "#/$defs"

// bodyEncodings maps supported request body media types to the template
// encoding emitted for the body slot.
var bodyEncodings = map[string]string{
	"application/json":                  "json",
	"application/x-www-form-urlencoded": "urlencoded",
	"multipart/form-data":               "multipart",
}

type slot struct {
	name   string
	schema any
}

// request synthesizes the parameter schema and HTTP request template for an
// operation.
func (g *Generator) request(op document.Operation) (any, any, error) {
	var slots []slot
	var required []string
	var queryNames, headerNames []string
	taken := map[string]bool{}

	for _, param := range op.AllParameters() {
		schema, ok := param.Schema()
		if !ok {
			continue
		}
		name := param.Name()

		var fragment any = schema
		if description := param.Description(); description != "" {
			// Parameter description overrides the schema's own.
			copied := document.CopyObj(schema)
			copied.Set("description", description)
			fragment = copied
		}

		switch param.In() {
		case "query":
			queryNames = append(queryNames, name)
		case "header":
			headerNames = append(headerNames, name)
		case "path":
			// Already embedded in the URL template.
		case "cookie":
			// Collected into the parameter schema but never emitted into the
			// request template; cookies are handled out of band.
		}

		slots = append(slots, slot{name: name, schema: fragment})
		taken[name] = true
		if param.Required() {
			required = append(required, name)
		}
	}

	var bodyKey, bodyEncoding string
	if body, ok := op.RequestBody(); ok {
		for _, media := range body.Content() {
			encoding, supported := bodyEncodings[mediaKind(media.Name())]
			if !supported {
				continue
			}
			schema, ok := media.Schema()
			if !ok {
				continue
			}
			bodyKey = bodySlotKey(taken)
			bodyEncoding = encoding
			slots = append(slots, slot{name: bodyKey, schema: schema})
			if body.Required() {
				required = append(required, bodyKey)
			}
			break
		}
	}

	roots := make([]any, len(slots))
	for i, s := range slots {
		roots[i] = s.schema
	}
	result, err := g.shaker.Shake(op.API(), shake.Request{
		Roots:     roots,
		DefsURI:   defsURI,
		Transform: g.options.Transform,
	})
	if err != nil {
		return nil, nil, err
	}

	parameters := document.NewObj()
	parameters.Set("type", "object")
	if len(slots) > 0 {
		properties := document.NewObj()
		for i, s := range slots {
			properties.Set(s.name, result.Roots[i])
		}
		parameters.Set("properties", properties)
	}
	if len(required) > 0 {
		parameters.Set("required", toAnySlice(required))
	}
	if result.Defs.Len() > 0 {
		parameters.Set("$defs", result.Defs)
	}

	base, err := g.serverURL(op)
	if err != nil {
		return nil, nil, err
	}
	// The operation path is appended verbatim; its {name} segments are
	// expanded by the tool runtime.
	url := base + op.Path()
	if len(queryNames) > 0 {
		separator := "?"
		if strings.Contains(url, "?") {
			separator = "&"
		}
		url += "{" + separator + strings.Join(queryNames, ",") + "}"
	}

	urlTemplate := document.NewObj()
	urlTemplate.Set("$uri", url)

	request := document.NewObj()
	request.Set("method", op.Method())
	request.Set("url", urlTemplate)
	if len(headerNames) > 0 {
		headers := document.NewObj()
		for _, name := range headerNames {
			ref := document.NewObj()
			ref.Set("$", name)
			headers.Set(name, ref)
		}
		request.Set("headers", headers)
	}
	if bodyKey != "" {
		bodyTemplate := document.NewObj()
		bodyTemplate.Set("$encode", bodyEncoding)
		bodyTemplate.Set("$", bodyKey)
		request.Set("body", bodyTemplate)
	}

	return parameters, request, nil
}

// serverURL picks the base URL: explicit option, then operation servers,
// then path-item servers, then API servers. The chosen server's variables
// are expanded with their defaults.
func (g *Generator) serverURL(op document.Operation) (string, error) {
	if g.options.Server != "" {
		return g.options.Server, nil
	}
	for _, candidates := range [][]document.Server{
		op.Servers(),
		op.PathItem().Servers(),
		op.API().Servers(),
	} {
		if len(candidates) > 0 {
			return candidates[0].Expand()
		}
	}
	return "", fmt.Errorf("%w for %s %s", ErrNoServers, op.Method(), op.Path())
}

// bodySlotKey picks "body", or "body1", "body2", ... until the key does not
// collide with a parameter name.
func bodySlotKey(taken map[string]bool) string {
	if !taken["body"] {
		return "body"
	}
	for i := 1; ; i++ {
		key := fmt.Sprintf("body%d", i)
		if !taken[key] {
			return key
		}
	}
}

// mediaKind strips media type parameters such as "; charset=utf-8".
func mediaKind(name string) string {
	if i := strings.IndexByte(name, ';'); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(strings.TrimSpace(name))
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
