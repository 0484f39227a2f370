// Package query builds and formats the path expressions embedded in tool
// handle templates. The language is deliberately tiny: a name selector for
// the current binding, a named child selector, and a wildcard children
// selector.
package query

import (
	"strings"
)

type Selector interface {
	appendTo(sb *strings.Builder)
}

// Name selects the current binding by variable name.
type Name struct {
	Ident string
}

// Child selects a named field of a base selector.
type Child struct {
	Of    Selector
	Field string
}

// Children selects every child of a base selector.
type Children struct {
	Of Selector
}

func (n Name) appendTo(sb *strings.Builder) {
	sb.WriteString(n.Ident)
}

func (c Child) appendTo(sb *strings.Builder) {
	c.Of.appendTo(sb)
	if isIdent(c.Field) {
		sb.WriteByte('.')
		sb.WriteString(c.Field)
		return
	}
	sb.WriteString(`["`)
	sb.WriteString(escapeField(c.Field))
	sb.WriteString(`"]`)
}

func (c Children) appendTo(sb *strings.Builder) {
	c.Of.appendTo(sb)
	sb.WriteString("[*]")
}

// Format renders a selector as the string form understood by the template
// runtime.
func Format(s Selector) string {
	var sb strings.Builder
	s.appendTo(&sb)
	return sb.String()
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func escapeField(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
