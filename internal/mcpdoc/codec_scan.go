package mcpdoc

import (
	"encoding/json"
	"fmt"
	"os"
)

// ScanCodec reads documents by scanning the raw text with a
// string-aware, brace-balanced walk. It is the fallback used when jq is
// absent. Ill-formed input fails closed with an error rather than
// risking a silent mis-extraction.
type ScanCodec struct{}

func NewScanCodec() *ScanCodec {
	return &ScanCodec{}
}

// section is one provider member: the name and the byte range of its
// value, preserved verbatim.
type section struct {
	name       string
	start, end int
}

func (c *ScanCodec) Names(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sections, err := scanSections(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	names := make([]string, 0, len(sections))
	for _, s := range sections {
		names = append(names, s.name)
	}
	return names, nil
}

func (c *ScanCodec) Extract(path, name string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sections, err := scanSections(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, s := range sections {
		if s.name == name {
			raw := make([]byte, s.end-s.start)
			copy(raw, data[s.start:s.end])
			return raw, nil
		}
	}
	return nil, ErrNotFound
}

func (c *ScanCodec) Check(data []byte) error {
	_, err := scanSections(data)
	return err
}

// scanSections walks a configuration document and returns the provider
// members of the "mcpServers" object in source order. The whole
// document must be balanced; any structural surprise is an error.
func scanSections(data []byte) ([]section, error) {
	p := &docScanner{s: data}
	return p.parse()
}

type docScanner struct {
	s []byte
	i int
}

func (p *docScanner) parse() ([]section, error) {
	p.skipWS()
	if !p.consume('{') {
		return nil, p.errf("expected '{' at document start")
	}
	var sections []section
	p.skipWS()
	if p.consume('}') {
		return sections, p.trailing(sections)
	}
	for {
		key, err := p.parseString()
		if err != nil {
			return nil, err
		}
		p.skipWS()
		if !p.consume(':') {
			return nil, p.errf("expected ':' after key %q", key)
		}
		p.skipWS()
		if key == "mcpServers" {
			members, err := p.parseServers()
			if err != nil {
				return nil, err
			}
			sections = append(sections, members...)
		} else if err := p.skipValue(); err != nil {
			return nil, err
		}
		p.skipWS()
		if p.consume(',') {
			p.skipWS()
			continue
		}
		if p.consume('}') {
			return sections, p.trailing(sections)
		}
		return nil, p.errf("expected ',' or '}' after member %q", key)
	}
}

func (p *docScanner) trailing([]section) error {
	p.skipWS()
	if p.i != len(p.s) {
		return p.errf("unexpected trailing content")
	}
	return nil
}

func (p *docScanner) parseServers() ([]section, error) {
	if !p.consume('{') {
		return nil, p.errf("mcpServers is not an object")
	}
	var sections []section
	p.skipWS()
	if p.consume('}') {
		return sections, nil
	}
	for {
		name, err := p.parseString()
		if err != nil {
			return nil, err
		}
		p.skipWS()
		if !p.consume(':') {
			return nil, p.errf("expected ':' after provider %q", name)
		}
		p.skipWS()
		start := p.i
		if err := p.skipValue(); err != nil {
			return nil, err
		}
		sections = append(sections, section{name: name, start: start, end: p.i})
		p.skipWS()
		if p.consume(',') {
			p.skipWS()
			continue
		}
		if p.consume('}') {
			return sections, nil
		}
		return nil, p.errf("expected ',' or '}' after provider %q", name)
	}
}

// skipValue consumes any JSON value, tracking strings so braces inside
// them do not count.
func (p *docScanner) skipValue() error {
	if p.eof() {
		return p.errf("expected value")
	}
	switch p.s[p.i] {
	case '"':
		_, err := p.parseString()
		return err
	case '{', '[':
		open := p.s[p.i]
		closer := byte('}')
		if open == '[' {
			closer = ']'
		}
		p.i++
		depth := 1
		for !p.eof() {
			switch p.s[p.i] {
			case '"':
				if _, err := p.parseString(); err != nil {
					return err
				}
				continue
			case open:
				depth++
			case closer:
				depth--
				if depth == 0 {
					p.i++
					return nil
				}
			}
			p.i++
		}
		return p.errf("unbalanced %q", string(open))
	default:
		// number, true, false, null
		start := p.i
		for !p.eof() {
			switch p.s[p.i] {
			case ',', '}', ']', ' ', '\t', '\n', '\r':
				if p.i == start {
					return p.errf("expected value")
				}
				return nil
			}
			p.i++
		}
		return p.errf("unterminated value")
	}
}

func (p *docScanner) parseString() (string, error) {
	if !p.consume('"') {
		return "", p.errf("expected string")
	}
	start := p.i
	for !p.eof() {
		switch p.s[p.i] {
		case '\\':
			p.i += 2
		case '"':
			raw := p.s[start:p.i]
			p.i++
			var out string
			if err := json.Unmarshal(append(append([]byte{'"'}, raw...), '"'), &out); err != nil {
				return "", p.errf("bad string escape")
			}
			return out, nil
		default:
			p.i++
		}
	}
	return "", p.errf("unterminated string")
}

func (p *docScanner) skipWS() {
	for !p.eof() {
		switch p.s[p.i] {
		case ' ', '\t', '\n', '\r':
			p.i++
		default:
			return
		}
	}
}

func (p *docScanner) consume(c byte) bool {
	if !p.eof() && p.s[p.i] == c {
		p.i++
		return true
	}
	return false
}

func (p *docScanner) eof() bool { return p.i >= len(p.s) }

func (p *docScanner) errf(format string, args ...any) error {
	return fmt.Errorf("config scan: "+format+" (at byte %d)", append(args, p.i)...)
}
