// Package shake lifts the intra-document $ref targets of a set of schema
// roots into a shared $defs namespace, producing rewritten roots that are
// closed over that namespace. Callers submit all roots of one artifact
// together so fragments referenced from several roots are emitted once.
package shake

import (
	"fmt"
	"strings"

	"github.com/toolcog/tool-api/internal/document"
)

// Request carries the schema roots to rewrite. Roots holds raw schema
// fragments from the document tree; DefsURI is the base the rewritten
// references point into (e.g. "#/$defs"). Transform, when set, is applied to
// each root and each lifted definition before its references are rewritten.
type Request struct {
	Roots     []any
	DefsURI   string
	Transform func(any) any
}

// Result holds the rewritten roots, index-aligned with the request, plus the
// shared definitions they reference.
type Result struct {
	Roots []any
	Defs  document.Obj
}

type Shaker interface {
	Shake(api *document.API, req Request) (*Result, error)
}

func New() Shaker {
	return &treeShaker{}
}

type treeShaker struct{}

func (t *treeShaker) Shake(api *document.API, req Request) (*Result, error) {
	w := &walker{
		api:       api,
		defsURI:   strings.TrimSuffix(req.DefsURI, "/"),
		transform: req.Transform,
		defs:      document.NewObj(),
		names:     map[string]string{},
	}

	roots := make([]any, len(req.Roots))
	for i, root := range req.Roots {
		rewritten, err := w.rewrite(w.apply(root))
		if err != nil {
			return nil, fmt.Errorf("shaking root %d: %w", i, err)
		}
		roots[i] = rewritten
	}

	return &Result{Roots: roots, Defs: w.defs}, nil
}

type walker struct {
	api       *document.API
	defsURI   string
	transform func(any) any
	defs      document.Obj
	names     map[string]string // ref string -> def name
}

func (w *walker) apply(node any) any {
	if w.transform == nil {
		return node
	}
	return w.transform(node)
}

// rewrite deep-copies node, replacing every resolvable $ref with a reference
// into the defs namespace. Sibling keys of a $ref are preserved.
func (w *walker) rewrite(node any) (any, error) {
	switch n := node.(type) {
	case document.Obj:
		out := document.NewObj()
		for pair := n.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Key == "$ref" {
				ref, ok := pair.Value.(string)
				if !ok {
					return nil, fmt.Errorf("$ref is not a string")
				}
				name, err := w.lift(ref)
				if err != nil {
					return nil, err
				}
				out.Set("$ref", w.defsURI+"/"+escapeToken(name))
				continue
			}
			value, err := w.rewrite(pair.Value)
			if err != nil {
				return nil, err
			}
			out.Set(pair.Key, value)
		}
		return out, nil
	case []any:
		out := make([]any, len(n))
		for i, item := range n {
			value, err := w.rewrite(item)
			if err != nil {
				return nil, err
			}
			out[i] = value
		}
		return out, nil
	default:
		return node, nil
	}
}

// lift registers the target of ref as a shared definition and returns its
// name. Registration happens before the target is rewritten, so cyclic
// references terminate.
func (w *walker) lift(ref string) (string, error) {
	if name, ok := w.names[ref]; ok {
		return name, nil
	}
	target, ok := w.api.ResolveRef(ref)
	if !ok {
		return "", fmt.Errorf("unresolvable $ref %q", ref)
	}
	name := w.uniqueName(refName(ref))
	w.names[ref] = name

	rewritten, err := w.rewrite(w.apply(target))
	if err != nil {
		return "", err
	}
	w.defs.Set(name, rewritten)
	return name, nil
}

func (w *walker) uniqueName(base string) string {
	if base == "" {
		base = "schema"
	}
	if _, taken := w.defs.Get(base); !taken {
		if _, pending := reverseLookup(w.names, base); !pending {
			return base
		}
	}
	for i := 2; ; i++ {
		name := fmt.Sprintf("%s%d", base, i)
		if _, taken := w.defs.Get(name); taken {
			continue
		}
		if _, pending := reverseLookup(w.names, name); pending {
			continue
		}
		return name
	}
}

func reverseLookup(names map[string]string, name string) (string, bool) {
	for ref, n := range names {
		if n == name {
			return ref, true
		}
	}
	return "", false
}

// refName derives a definition name from the final segment of the reference
// pointer.
func refName(ref string) string {
	s := ref
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.ReplaceAll(s, "~1", "/")
	return strings.ReplaceAll(s, "~0", "~")
}

func escapeToken(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}
