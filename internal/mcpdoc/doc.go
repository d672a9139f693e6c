// Package mcpdoc models the mcp.json configuration document: an ordered
// set of provider entries, the codecs that read prior documents, and the
// renderer that writes the merged result atomically.
package mcpdoc

import (
	"encoding/json"
	"sort"

	"github.com/vsavkov/mcpsetup/internal/serverspec"
)

type namedDef struct {
	name string
	def  serverspec.ServerDef
}

type namedRaw struct {
	name string
	raw  json.RawMessage
}

// Document is the in-memory configuration. Builtin entries come first
// in lexical order; preserved extras follow, also in lexical order.
// Provider names are unique; on a collision the builtin entry wins and
// the extra is rejected.
type Document struct {
	builtin []namedDef
	extras  []namedRaw
	names   map[string]struct{}
}

// New builds a document from a builtin definition table.
func New(defs map[string]serverspec.ServerDef) *Document {
	d := &Document{names: make(map[string]struct{}, len(defs))}
	for _, name := range serverspec.SortedNames(defs) {
		d.builtin = append(d.builtin, namedDef{name: name, def: defs[name].Clone()})
		d.names[name] = struct{}{}
	}
	return d
}

// AddExtra appends a preserved provider carried verbatim from a prior
// document. Returns false when the name is already taken: extras are
// additive only, never overriding.
func (d *Document) AddExtra(name string, raw json.RawMessage) bool {
	if _, taken := d.names[name]; taken {
		return false
	}
	if name == "" || len(raw) == 0 {
		return false
	}
	d.extras = append(d.extras, namedRaw{name: name, raw: raw})
	sort.Slice(d.extras, func(i, j int) bool { return d.extras[i].name < d.extras[j].name })
	d.names[name] = struct{}{}
	return true
}

// Names returns all provider names in serialization order.
func (d *Document) Names() []string {
	out := make([]string, 0, len(d.builtin)+len(d.extras))
	for _, e := range d.builtin {
		out = append(out, e.name)
	}
	for _, e := range d.extras {
		out = append(out, e.name)
	}
	return out
}

// Has reports whether a provider name is present.
func (d *Document) Has(name string) bool {
	_, ok := d.names[name]
	return ok
}
