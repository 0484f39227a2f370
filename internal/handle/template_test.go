package handle

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"

	"github.com/toolcog/tool-api/internal/document"
)

func schema(t *testing.T, src string) any {
	t.Helper()
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &node))
	raw, err := document.FromYAML(&node)
	require.NoError(t, err)
	return raw
}

func blockParts(t *testing.T, template any) []any {
	t.Helper()
	obj, ok := template.(document.Obj)
	require.True(t, ok)
	value, ok := obj.Get("$block")
	require.True(t, ok)
	parts, ok := value.([]any)
	require.True(t, ok)
	return parts
}

func isJSONBlock(template any) bool {
	obj, ok := template.(document.Obj)
	if !ok {
		return false
	}
	return document.GetString(obj, "$lang") == "json"
}

func TestRenderDepthBound(t *testing.T) {
	r := newRenderer(document.NewObj())
	deep := schema(t, `
type: object
title: Nested
properties:
  inner: {type: object}
`)

	for _, depth := range []int{7, 8, 20} {
		out := r.render(deep, state{varname: "body", depth: depth})
		require.True(t, isJSONBlock(out), "depth %d must render a raw JSON block", depth)
	}

	// At the bound itself the schema still renders structurally.
	out := r.render(deep, state{varname: "body", depth: 6})
	parts := blockParts(t, out)
	head := parts[0].(document.Obj)
	_, ok := head.Get("$h6")
	require.True(t, ok)
}

func TestRenderObjectMaster(t *testing.T) {
	r := newRenderer(document.NewObj())
	out := r.render(schema(t, `
type: object
title: Widget
description: A widget.
properties:
  name:
    type: string
    description: |-
      Display name.
      Second line is dropped from the digest.
  size:
    type: integer
    default: 10
`), state{varname: "body", depth: 1})

	parts := blockParts(t, out)
	require.Len(t, parts, 4)

	head := parts[0].(document.Obj)
	title, _ := head.Get("$h1")
	require.Equal(t, "Widget", title)

	require.Equal(t, "A widget.", parts[1])

	digest := parts[2].(document.Obj)
	items, _ := digest.Get("$ul")
	bullets := items.([]any)
	require.Equal(t, "**name**: Display name.", bullets[0])
	require.Equal(t, "**size** (default: 10)", bullets[1])

	require.True(t, isJSONBlock(parts[3]))
	code := parts[3].(document.Obj)
	value, _ := document.GetObject(code, "$code")
	require.Equal(t, "body", document.GetString(value, "$"))
}

func TestRenderArrayHeadings(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		heading string
	}{
		{
			name: "array title wins",
			src: `
type: array
title: Inventory
items: {title: Widget, type: object}
`,
			heading: "Inventory",
		},
		{
			name: "item title list",
			src: `
items: {title: Widget, type: object}
`,
			heading: "Widget list",
		},
		{
			name: "untitled",
			src: `
type: array
items: {type: integer}
`,
			heading: "List",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRenderer(document.NewObj())
			out := r.render(schema(t, tt.src), state{varname: "body", depth: 1})
			parts := blockParts(t, out)
			head := parts[0].(document.Obj)
			title, _ := head.Get("$h1")
			require.Equal(t, tt.heading, title)
		})
	}
}

func TestRenderArrayIteration(t *testing.T) {
	r := newRenderer(document.NewObj())
	out := r.render(schema(t, `
type: array
items:
  type: object
  properties:
    name: {type: string}
    id: {type: integer}
`), state{varname: "body", depth: 1})

	parts := blockParts(t, out)
	each := parts[len(parts)-1].(document.Obj)
	require.Equal(t, "body[*]", document.GetString(each, "$each"))
	require.Equal(t, "item", document.GetString(each, "$as"))

	element, ok := each.Get("$block")
	require.True(t, ok)
	elementParts := blockParts(t, element)

	// Element heading binds the title property's live value; "name" is
	// string-typed so it wins over "id".
	head := elementParts[0].(document.Obj)
	ref, _ := head.Get("$h2")
	refObj := ref.(document.Obj)
	require.Equal(t, "item.name", document.GetString(refObj, "$"))

	code := elementParts[1].(document.Obj)
	value, _ := document.GetObject(code, "$code")
	require.Equal(t, "item", document.GetString(value, "$"))
}

func TestTitlePropertyHeuristic(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected string
	}{
		{
			name: "title preferred",
			src: `
type: object
properties:
  title: {type: string}
  name: {type: string}
  id: {type: string}
`,
			expected: "title",
		},
		{
			name: "non-string title skipped",
			src: `
type: object
properties:
  title: {type: integer}
  name: {type: string}
`,
			expected: "name",
		},
		{
			name: "type array includes string",
			src: `
type: object
properties:
  id:
    type: [string, "null"]
`,
			expected: "id",
		},
		{
			name: "no candidate",
			src: `
type: object
properties:
  label: {type: string}
`,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRenderer(document.NewObj())
			obj := schema(t, tt.src).(document.Obj)
			require.Equal(t, tt.expected, r.titleProperty(obj))
		})
	}
}

func TestRenderElementWithoutTitleProperty(t *testing.T) {
	r := newRenderer(document.NewObj())
	out := r.render(schema(t, `
type: array
items:
  type: object
  properties:
    weight: {type: number}
`), state{varname: "body", depth: 1})

	parts := blockParts(t, out)
	each := parts[len(parts)-1].(document.Obj)
	element, _ := each.Get("$block")
	head := blockParts(t, element)[0].(document.Obj)
	title, _ := head.Get("$h2")
	require.Equal(t, "Item", title)
}

func TestResolveRefChainTitles(t *testing.T) {
	defs := document.NewObj()
	defs.Set("Inner", schema(t, `
title: Inner title
description: Inner description
type: object
properties:
  a: {type: string}
`))
	r := newRenderer(defs)

	// The closer title wins; the target's description survives.
	resolved := r.resolve(schema(t, `
title: Outer title
$ref: '#/$defs/Inner'
`), 0).(document.Obj)
	require.Equal(t, "Outer title", document.GetString(resolved, "title"))
	require.Equal(t, "Inner description", document.GetString(resolved, "description"))

	// Without a closer title, the target's own title is kept.
	resolved = r.resolve(schema(t, `
$ref: '#/$defs/Inner'
`), 0).(document.Obj)
	require.Equal(t, "Inner title", document.GetString(resolved, "title"))
}

func TestResolveRefCycle(t *testing.T) {
	defs := document.NewObj()
	defs.Set("Loop", schema(t, `
$ref: '#/$defs/Loop'
`))
	r := newRenderer(defs)

	// A cyclic chain terminates.
	out := r.resolve(schema(t, `{$ref: '#/$defs/Loop'}`), 0)
	require.NotNil(t, out)
}

func TestAllOfMerge(t *testing.T) {
	r := newRenderer(document.NewObj())
	resolved := r.resolve(schema(t, `
allOf:
  - type: object
    title: Base
    properties:
      a: {type: string}
      b: {type: string, description: from base}
  - type: object
    properties:
      b: {type: string, description: from extension}
      c: {type: integer}
`), 0).(document.Obj)

	require.Equal(t, "Base", document.GetString(resolved, "title"))
	properties, ok := document.GetObject(resolved, "properties")
	require.True(t, ok)
	require.Equal(t, 3, properties.Len())

	// Later members overwrite same-named properties.
	b, _ := document.GetObject(properties, "b")
	require.Equal(t, "from extension", document.GetString(b, "description"))
}

func TestAllOfBailOut(t *testing.T) {
	r := newRenderer(document.NewObj())
	src := schema(t, `
allOf:
  - type: object
    properties:
      a: {}
  - type: string
`)

	resolved := r.resolve(src, 0).(document.Obj)
	// The merge bails out: the allOf schema comes back unmerged.
	_, hasAllOf := resolved.Get("allOf")
	require.True(t, hasAllOf)
	_, hasProperties := resolved.Get("properties")
	require.False(t, hasProperties)

	// And the unmerged schema falls through to the raw JSON block template.
	out := r.render(src, state{varname: "body", depth: 1})
	require.True(t, isJSONBlock(out))
}

func TestDigestNestedObject(t *testing.T) {
	r := newRenderer(document.NewObj())
	digest := r.digest(schema(t, `
type: object
properties:
  owner:
    type: object
    description: The owner.
    properties:
      name: {type: string, description: Owner name.}
`).(document.Obj), 0)

	items, _ := digest.(document.Obj).Get("$ul")
	bullets := items.([]any)
	nested, ok := bullets[0].([]any)
	require.True(t, ok)
	require.Equal(t, "**owner**: The owner.", nested[0])

	sub := nested[1].(document.Obj)
	subItems, _ := sub.Get("$ul")
	require.Equal(t, []any{"**name**: Owner name."}, subItems)
}

func TestDigestSelfReferenceTerminates(t *testing.T) {
	defs := document.NewObj()
	defs.Set("Node", schema(t, `
type: object
properties:
  child: {$ref: '#/$defs/Node'}
`))
	r := newRenderer(defs)

	node, _ := defs.Get("Node")
	digest := r.digest(node.(document.Obj), 0)
	require.NotNil(t, digest)
}

func TestMarkdownWrap(t *testing.T) {
	blockTemplate := block([]any{"hello"})
	wrapped := markdownWrap(blockTemplate)
	require.Equal(t, "markdown", document.GetString(wrapped, "$encode"))
	content, _ := wrapped.Get("$block")
	require.Equal(t, []any{"hello"}, content)
}

func TestMarkdownWrapNonBlock(t *testing.T) {
	leaf := document.NewObj()
	leaf.Set("$lang", "json")
	wrapped := markdownWrap(leaf)
	require.Equal(t, "markdown", document.GetString(wrapped, "$encode"))
	content, ok := wrapped.Get("$block")
	require.True(t, ok)
	require.Equal(t, leaf, content)
}

func TestRenderNestedArraysRespectDepth(t *testing.T) {
	// Deep array nesting: the innermost render crosses the depth bound and
	// must degrade to a raw JSON block.
	leaf := document.NewObj()
	leaf.Set("type", "integer")
	var nested any = leaf
	for i := 0; i < 8; i++ {
		wrap := document.NewObj()
		wrap.Set("type", "array")
		wrap.Set("items", nested)
		nested = wrap
	}
	r := newRenderer(document.NewObj())
	out := r.render(nested, state{varname: "body", depth: 1})

	depth := 0
	current := out
	for {
		obj, ok := current.(document.Obj)
		require.True(t, ok)
		if document.GetString(obj, "$lang") == "json" {
			break
		}
		parts, ok2 := obj.Get("$block")
		require.True(t, ok2)
		list := parts.([]any)
		last := list[len(list)-1]
		each, ok3 := last.(document.Obj)
		require.True(t, ok3)
		next, ok4 := each.Get("$block")
		require.True(t, ok4)
		current = next
		depth++
		require.LessOrEqual(t, depth, maxDepth+1)
	}
}
