package mcpdoc

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/vsavkov/mcpsetup/internal/serverspec"
)

// Render serializes the document as tab-indented JSON. Builtin entries
// come first, preserved extras after, raw extra blocks spliced in
// verbatim so whatever fields the prior file carried survive untouched.
func (d *Document) Render() []byte {
	var b strings.Builder
	b.WriteString("{\n\t\"mcpServers\": {")

	total := len(d.builtin) + len(d.extras)
	written := 0
	for _, e := range d.builtin {
		b.WriteString("\n\t\t")
		b.WriteString(quote(e.name))
		b.WriteString(": ")
		writeDef(&b, e.def)
		written++
		if written < total {
			b.WriteString(",")
		}
	}
	for _, e := range d.extras {
		b.WriteString("\n\t\t")
		b.WriteString(quote(e.name))
		b.WriteString(": ")
		b.WriteString(reindentRaw(e.raw, "\t\t"))
		written++
		if written < total {
			b.WriteString(",")
		}
	}

	if total > 0 {
		b.WriteString("\n\t")
	}
	b.WriteString("}\n}\n")
	return []byte(b.String())
}

// writeDef renders one builtin definition at entry indentation (two
// tabs). command and args are always present; env, autoApprove,
// disabled and timeout only when the template sets them.
func writeDef(b *strings.Builder, def serverspec.ServerDef) {
	b.WriteString("{")
	b.WriteString("\n\t\t\t\"command\": ")
	b.WriteString(quote(def.Command))
	b.WriteString(",\n\t\t\t\"args\": ")
	writeStrings(b, def.Args, "\t\t\t")
	if def.Env != nil {
		b.WriteString(",\n\t\t\t\"env\": ")
		writeEnv(b, def.Env)
	}
	if def.AutoApprove != nil {
		b.WriteString(",\n\t\t\t\"autoApprove\": ")
		writeStrings(b, def.AutoApprove, "\t\t\t")
	}
	if def.Disabled != nil {
		b.WriteString(",\n\t\t\t\"disabled\": ")
		if *def.Disabled {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	}
	if def.Timeout != nil {
		b.WriteString(",\n\t\t\t\"timeout\": ")
		raw, _ := json.Marshal(*def.Timeout)
		b.Write(raw)
	}
	b.WriteString("\n\t\t}")
}

func writeStrings(b *strings.Builder, items []string, indent string) {
	if len(items) == 0 {
		b.WriteString("[]")
		return
	}
	b.WriteString("[")
	for i, item := range items {
		b.WriteString("\n" + indent + "\t")
		b.WriteString(quote(item))
		if i < len(items)-1 {
			b.WriteString(",")
		}
	}
	b.WriteString("\n" + indent + "]")
}

func writeEnv(b *strings.Builder, env map[string]string) {
	if len(env) == 0 {
		b.WriteString("{}")
		return
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b.WriteString("{")
	for i, k := range keys {
		b.WriteString("\n\t\t\t\t")
		b.WriteString(quote(k))
		b.WriteString(": ")
		b.WriteString(quote(env[k]))
		if i < len(keys)-1 {
			b.WriteString(",")
		}
	}
	b.WriteString("\n\t\t\t}")
}

func quote(s string) string {
	raw, _ := json.Marshal(s)
	return string(raw)
}

// reindentRaw re-homes a verbatim block at the given indentation.
// Single-line blocks (jq -c output) pass through unchanged. Multi-line
// blocks keep their internal structure: the closing line's leading
// whitespace is taken as the block's base indent and swapped for ours.
func reindentRaw(raw json.RawMessage, indent string) string {
	s := strings.TrimSpace(string(raw))
	lines := strings.Split(s, "\n")
	if len(lines) == 1 {
		return s
	}
	last := lines[len(lines)-1]
	base := last[:len(last)-len(strings.TrimLeft(last, " \t"))]
	for i := 1; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], "\r")
		if base != "" && strings.HasPrefix(line, base) {
			lines[i] = indent + line[len(base):]
		} else {
			lines[i] = indent + strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(lines, "\n")
}
