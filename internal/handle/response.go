package handle

import (
	"github.com/toolcog/tool-api/internal/document"
	"github.com/toolcog/tool-api/internal/shake"
)

// responses synthesizes one rendering template per response code. All
// response schemas of the operation share a single defs namespace, so their
// fragments are shaken together.
func (g *Generator) responses(op document.Operation) (any, error) {
	rs, ok := op.Responses()
	if !ok {
		return nil, nil
	}

	type entry struct {
		code   string
		schema document.Obj
	}
	var entries []entry
	for _, response := range rs.All() {
		for _, media := range response.Content() {
			schema, ok := media.Schema()
			if !ok {
				continue
			}
			entries = append(entries, entry{code: response.Code(), schema: schema})
			break
		}
	}
	if len(entries) == 0 {
		return nil, nil
	}

	roots := make([]any, len(entries))
	for i, e := range entries {
		roots[i] = e.schema
	}
	result, err := g.shaker.Shake(op.API(), shake.Request{
		Roots:     roots,
		DefsURI:   defsURI,
		Transform: g.options.Transform,
	})
	if err != nil {
		return nil, err
	}

	renderer := newRenderer(result.Defs)
	out := document.NewObj()
	for i, e := range entries {
		template := renderer.render(result.Roots[i], state{varname: "body", depth: 1})
		out.Set(e.code, markdownWrap(template))
	}
	return out, nil
}
