package document

import (
	"fmt"

	"github.com/yosida95/uritemplate/v3"
)

// Server is the view over a server entry.
type Server struct {
	api *API
	raw Obj
}

func (s Server) URL() string         { return GetString(s.raw, "url") }
func (s Server) Description() string { return GetString(s.raw, "description") }

// Variables returns the server's variable names in document order.
func (s Server) Variables() []string {
	vars, ok := GetObject(s.raw, "variables")
	if !ok {
		return nil
	}
	var out []string
	for pair := vars.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// VariableDefault returns the default value declared for a server variable.
func (s Server) VariableDefault(name string) (string, bool) {
	vars, ok := GetObject(s.raw, "variables")
	if !ok {
		return "", false
	}
	variable, ok := GetObject(vars, name)
	if !ok {
		return "", false
	}
	value, ok := variable.Get("default")
	if !ok {
		return "", false
	}
	switch v := value.(type) {
	case string:
		return v, true
	default:
		return fmt.Sprintf("%v", v), true
	}
}

// Expand substitutes each server variable's default value into the URL
// template. URLs without variables pass through verbatim.
func (s Server) Expand() (string, error) {
	raw := s.URL()
	vars, ok := GetObject(s.raw, "variables")
	if !ok || vars.Len() == 0 {
		return raw, nil
	}
	template, err := uritemplate.New(raw)
	if err != nil {
		return "", fmt.Errorf("parsing server URL template %q: %w", raw, err)
	}
	values := uritemplate.Values{}
	for pair := vars.Oldest(); pair != nil; pair = pair.Next() {
		def, _ := s.VariableDefault(pair.Key)
		values[pair.Key] = uritemplate.String(def)
	}
	expanded, err := template.Expand(values)
	if err != nil {
		return "", fmt.Errorf("expanding server URL template %q: %w", raw, err)
	}
	return expanded, nil
}
