// Package serverspec defines MCP provider definitions and the builtin
// set this installer provisions by default.
package serverspec

import "sort"

// AutoApproveAll is the wildcard marker approving every operation.
const AutoApproveAll = "*"

// ServerDef is one provider entry in mcp.json.
//
// Field presence mirrors the builtin template per provider: Command and
// Args are always serialized, the remaining fields only when the
// template sets them. nil means "omit"; an empty non-nil collection is
// serialized as empty.
type ServerDef struct {
	Command     string            `json:"command"`
	Args        []string          `json:"args"`
	Env         map[string]string `json:"env,omitempty"`
	AutoApprove []string          `json:"autoApprove,omitempty"`
	Disabled    *bool             `json:"disabled,omitempty"`
	Timeout     *int              `json:"timeout,omitempty"`
}

// Clone returns a deep copy so callers can mutate freely.
func (d ServerDef) Clone() ServerDef {
	out := d
	out.Args = append([]string{}, d.Args...)
	if d.Env != nil {
		out.Env = make(map[string]string, len(d.Env))
		for k, v := range d.Env {
			out.Env[k] = v
		}
	}
	if d.AutoApprove != nil {
		out.AutoApprove = append([]string{}, d.AutoApprove...)
	}
	if d.Disabled != nil {
		v := *d.Disabled
		out.Disabled = &v
	}
	if d.Timeout != nil {
		v := *d.Timeout
		out.Timeout = &v
	}
	return out
}

// SortedNames returns the keys of a definition map in lexical order.
func SortedNames(defs map[string]ServerDef) []string {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func boolPtr(v bool) *bool { return &v }

func intPtr(v int) *int { return &v }
