package handle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/toolcog/tool-api/internal/document"
	"github.com/toolcog/tool-api/internal/query"
)

// maxDepth bounds template recursion; schemas nested beyond it render as a
// raw JSON block regardless of shape.
const maxDepth = 6

// maxDigestDepth bounds the nesting of key-property sub-lists, so
// self-referential schemas terminate.
const maxDigestDepth = 4

// state is threaded through recursive template synthesis to name the
// current binding and bound recursion.
type state struct {
	varname string
	depth   int
}

// renderer converts resolved JSON Schemas into display templates. It emits
// static structure referencing the live value by path expression, never the
// data itself.
type renderer struct {
	defs document.Obj
}

func newRenderer(defs document.Obj) *renderer {
	return &renderer{defs: defs}
}

// render produces the template for a schema in master mode.
func (r *renderer) render(schema any, st state) any {
	if st.depth > maxDepth {
		return r.jsonBlock(query.Name{Ident: st.varname})
	}
	obj, ok := r.resolve(schema, 0).(document.Obj)
	if !ok {
		return r.jsonBlock(query.Name{Ident: st.varname})
	}
	switch {
	case isArrayShaped(obj):
		return r.arrayTemplate(obj, st)
	case isObjectShaped(obj):
		return r.objectTemplate(obj, st)
	default:
		return r.jsonBlock(query.Name{Ident: st.varname})
	}
}

// objectTemplate renders an object schema in master mode: heading, optional
// description, key-properties digest, then a JSON block bound to the
// current path.
func (r *renderer) objectTemplate(obj document.Obj, st state) any {
	title := document.GetString(obj, "title")
	if title == "" {
		title = "Object"
	}
	parts := []any{heading(st.depth, title)}
	if description := document.GetString(obj, "description"); description != "" {
		parts = append(parts, description)
	}
	if digest := r.digest(obj, 0); digest != nil {
		parts = append(parts, digest)
	}
	parts = append(parts, r.jsonBlock(query.Name{Ident: st.varname}))
	return block(parts)
}

// arrayTemplate renders an array schema: heading, optional description, a
// digest derived from the item schema, then an iteration construct binding
// "item" over the children of the current path.
func (r *renderer) arrayTemplate(obj document.Obj, st state) any {
	var rawItem any
	if value, ok := obj.Get("items"); ok {
		rawItem = value
	}
	item, _ := r.resolve(rawItem, 0).(document.Obj)

	title := document.GetString(obj, "title")
	if title == "" {
		if itemTitle := document.GetString(item, "title"); itemTitle != "" {
			title = itemTitle + " list"
		} else {
			title = "List"
		}
	}

	parts := []any{heading(st.depth, title)}
	if description := document.GetString(obj, "description"); description != "" {
		parts = append(parts, description)
	}
	if item != nil {
		if digest := r.digest(item, 0); digest != nil {
			parts = append(parts, digest)
		}
	}

	each := document.NewObj()
	each.Set("$each", query.Format(query.Children{Of: query.Name{Ident: st.varname}}))
	each.Set("$as", "item")
	each.Set("$block", r.elementTemplate(rawItem, state{varname: "item", depth: st.depth + 1}))
	parts = append(parts, each)

	return block(parts)
}

// elementTemplate renders a schema in element mode, inside an array: the
// heading shows the detected title property's live value when one exists,
// else the literal "Item".
func (r *renderer) elementTemplate(schema any, st state) any {
	if st.depth > maxDepth {
		return r.jsonBlock(query.Name{Ident: st.varname})
	}
	obj, ok := r.resolve(schema, 0).(document.Obj)
	if !ok {
		return r.jsonBlock(query.Name{Ident: st.varname})
	}
	if isArrayShaped(obj) {
		return r.arrayTemplate(obj, st)
	}
	if !isObjectShaped(obj) {
		return r.jsonBlock(query.Name{Ident: st.varname})
	}

	var head any
	if property := r.titleProperty(obj); property != "" {
		ref := document.NewObj()
		ref.Set("$", query.Format(query.Child{Of: query.Name{Ident: st.varname}, Field: property}))
		head = heading(st.depth, ref)
	} else {
		head = heading(st.depth, "Item")
	}
	return block([]any{head, r.jsonBlock(query.Name{Ident: st.varname})})
}

// resolve follows $ref chains, collecting the most specific title and
// description seen along the way and reapplying them onto the target, then
// merges allOf when every member is object-shaped. A non-object member
// leaves the allOf schema unmerged.
func (r *renderer) resolve(node any, depth int) any {
	if depth > 16 {
		return node
	}

	var title, description string
	current := node
	seen := map[string]bool{}
	for {
		obj, ok := current.(document.Obj)
		if !ok {
			break
		}
		if title == "" {
			title = document.GetString(obj, "title")
		}
		if description == "" {
			description = document.GetString(obj, "description")
		}
		ref := document.GetString(obj, "$ref")
		if ref == "" || seen[ref] {
			break
		}
		seen[ref] = true
		target, ok := r.lookup(ref)
		if !ok {
			break
		}
		current = target
	}

	obj, ok := current.(document.Obj)
	if !ok {
		return current
	}
	if title != "" && document.GetString(obj, "title") != title ||
		description != "" && document.GetString(obj, "description") != description {
		obj = document.CopyObj(obj)
		if title != "" {
			obj.Set("title", title)
		}
		if description != "" {
			obj.Set("description", description)
		}
	}

	members, ok := document.GetArray(obj, "allOf")
	if !ok || len(members) == 0 {
		return obj
	}
	resolved := make([]document.Obj, len(members))
	for i, member := range members {
		m, ok := r.resolve(member, depth+1).(document.Obj)
		if !ok || !isObjectShaped(m) {
			return obj
		}
		resolved[i] = m
	}

	merged := document.NewObj()
	merged.Set("type", "object")
	mergedTitle := document.GetString(obj, "title")
	mergedDescription := document.GetString(obj, "description")
	properties := document.NewObj()
	for _, member := range resolved {
		if mergedTitle == "" {
			mergedTitle = document.GetString(member, "title")
		}
		if mergedDescription == "" {
			mergedDescription = document.GetString(member, "description")
		}
		if memberProperties, ok := document.GetObject(member, "properties"); ok {
			for pair := memberProperties.Oldest(); pair != nil; pair = pair.Next() {
				properties.Set(pair.Key, pair.Value)
			}
		}
	}
	if mergedTitle != "" {
		merged.Set("title", mergedTitle)
	}
	if mergedDescription != "" {
		merged.Set("description", mergedDescription)
	}
	if properties.Len() > 0 {
		merged.Set("properties", properties)
	}
	return merged
}

// lookup resolves a reference into the shaken defs namespace.
func (r *renderer) lookup(ref string) (any, bool) {
	name, ok := strings.CutPrefix(ref, defsURI+"/")
	if !ok || r.defs == nil {
		return nil, false
	}
	name = strings.ReplaceAll(name, "~1", "/")
	name = strings.ReplaceAll(name, "~0", "~")
	return r.defs.Get(name)
}

// digest emits the bulleted key-properties summary of an object schema.
func (r *renderer) digest(obj document.Obj, depth int) any {
	properties, ok := document.GetObject(obj, "properties")
	if !ok || properties.Len() == 0 {
		return nil
	}
	var items []any
	for pair := properties.Oldest(); pair != nil; pair = pair.Next() {
		items = append(items, r.digestItem(pair.Key, pair.Value, depth))
	}
	list := document.NewObj()
	list.Set("$ul", items)
	return list
}

func (r *renderer) digestItem(name string, schema any, depth int) any {
	text := "**" + name + "**"
	obj, ok := r.resolve(schema, 0).(document.Obj)
	if !ok {
		return text
	}
	if description := firstLine(document.GetString(obj, "description")); description != "" {
		text += ": " + description
	}
	if value, ok := obj.Get("default"); ok {
		text += " (default: " + literal(value) + ")"
	}
	if depth < maxDigestDepth && isObjectShaped(obj) {
		if sub := r.digest(obj, depth+1); sub != nil {
			return []any{text, sub}
		}
	}
	return text
}

// titleProperty detects the property whose live value labels an element:
// a string-typed "title", then "name", then "id".
func (r *renderer) titleProperty(obj document.Obj) string {
	properties, ok := document.GetObject(obj, "properties")
	if !ok {
		return ""
	}
	for _, candidate := range []string{"title", "name", "id"} {
		value, ok := properties.Get(candidate)
		if !ok {
			continue
		}
		if property, ok := r.resolve(value, 0).(document.Obj); ok && typeIncludes(property, "string") {
			return candidate
		}
	}
	return ""
}

// jsonBlock emits a fenced JSON code block bound to the given path.
func (r *renderer) jsonBlock(selector query.Selector) any {
	value := document.NewObj()
	value.Set("$encode", "json")
	value.Set("$", query.Format(selector))
	out := document.NewObj()
	out.Set("$lang", "json")
	out.Set("$code", value)
	return out
}

// markdownWrap wraps a synthesized template with the markdown-encoding
// directive, first boxing non-block content into a generic block.
func markdownWrap(template any) document.Obj {
	out := document.NewObj()
	out.Set("$encode", "markdown")
	if obj, ok := template.(document.Obj); ok {
		if content, has := obj.Get("$block"); has {
			out.Set("$block", content)
			return out
		}
	}
	out.Set("$block", template)
	return out
}

func block(parts []any) document.Obj {
	out := document.NewObj()
	out.Set("$block", parts)
	return out
}

func heading(depth int, content any) document.Obj {
	if depth > maxDepth {
		depth = maxDepth
	}
	if depth < 1 {
		depth = 1
	}
	out := document.NewObj()
	out.Set(fmt.Sprintf("$h%d", depth), content)
	return out
}

func isArrayShaped(obj document.Obj) bool {
	if typeIncludes(obj, "array") {
		return true
	}
	_, ok := obj.Get("items")
	return ok
}

func isObjectShaped(obj document.Obj) bool {
	if typeIncludes(obj, "object") {
		return true
	}
	_, ok := obj.Get("properties")
	return ok
}

func typeIncludes(obj document.Obj, kind string) bool {
	if obj == nil {
		return false
	}
	value, ok := obj.Get("type")
	if !ok {
		return false
	}
	switch t := value.(type) {
	case string:
		return t == kind
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s == kind {
				return true
			}
		}
	}
	return false
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func literal(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(data)
}
