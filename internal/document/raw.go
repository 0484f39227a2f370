package document

import (
	"fmt"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.yaml.in/yaml/v4"
)

// Obj is a raw document object with document key order preserved. The whole
// document is held as a tree of Obj, []any and scalars; graph nodes are cheap
// views over fragments of this tree.
type Obj = *orderedmap.OrderedMap[string, any]

func NewObj() Obj {
	return orderedmap.New[string, any]()
}

// FromYAML converts a parsed YAML node into the raw tree representation.
// Mapping keys must be scalars; anything else is a structural error.
func FromYAML(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return FromYAML(node.Content[0])
	case yaml.MappingNode:
		obj := NewObj()
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i]
			if key.Kind != yaml.ScalarNode {
				return nil, &Error{Message: fmt.Sprintf("non-scalar mapping key at line %d", key.Line)}
			}
			value, err := FromYAML(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Set(key.Value, value)
		}
		return obj, nil
	case yaml.SequenceNode:
		items := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			value, err := FromYAML(child)
			if err != nil {
				return nil, err
			}
			items = append(items, value)
		}
		return items, nil
	case yaml.ScalarNode:
		var value any
		if err := node.Decode(&value); err != nil {
			return nil, fmt.Errorf("decoding scalar at line %d: %w", node.Line, err)
		}
		return value, nil
	case yaml.AliasNode:
		return FromYAML(node.Alias)
	default:
		return nil, nil
	}
}

// GetObject returns the object stored under key, or false when the key is
// absent or holds a non-object value.
func GetObject(obj Obj, key string) (Obj, bool) {
	if obj == nil {
		return nil, false
	}
	value, ok := obj.Get(key)
	if !ok {
		return nil, false
	}
	child, ok := value.(Obj)
	return child, ok
}

func GetString(obj Obj, key string) string {
	if obj == nil {
		return ""
	}
	value, ok := obj.Get(key)
	if !ok {
		return ""
	}
	s, _ := value.(string)
	return s
}

func GetBool(obj Obj, key string) bool {
	if obj == nil {
		return false
	}
	value, ok := obj.Get(key)
	if !ok {
		return false
	}
	b, _ := value.(bool)
	return b
}

func GetArray(obj Obj, key string) ([]any, bool) {
	if obj == nil {
		return nil, false
	}
	value, ok := obj.Get(key)
	if !ok {
		return nil, false
	}
	items, ok := value.([]any)
	return items, ok
}

// CopyObj returns a shallow copy; values are shared with the original.
func CopyObj(obj Obj) Obj {
	out := NewObj()
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, pair.Value)
	}
	return out
}

// walkPointer evaluates a JSON Pointer (without the leading "#") against the
// raw tree.
func walkPointer(root any, pointer string) (any, bool) {
	if pointer == "" {
		return root, true
	}
	if pointer[0] != '/' {
		return nil, false
	}
	current := root
	for _, token := range splitPointer(pointer[1:]) {
		switch node := current.(type) {
		case Obj:
			value, ok := node.Get(token)
			if !ok {
				return nil, false
			}
			current = value
		case []any:
			index, err := strconv.Atoi(token)
			if err != nil || index < 0 || index >= len(node) {
				return nil, false
			}
			current = node[index]
		default:
			return nil, false
		}
	}
	return current, true
}

func splitPointer(s string) []string {
	raw := []string{}
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '/' {
			raw = append(raw, unescapeToken(s[start:i]))
			start = i + 1
		}
	}
	return raw
}

func unescapeToken(token string) string {
	out := make([]byte, 0, len(token))
	for i := 0; i < len(token); i++ {
		if token[i] == '~' && i+1 < len(token) {
			switch token[i+1] {
			case '0':
				out = append(out, '~')
				i++
				continue
			case '1':
				out = append(out, '/')
				i++
				continue
			}
		}
		out = append(out, token[i])
	}
	return string(out)
}
