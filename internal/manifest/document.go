// Package manifest implements a small, eno-inspired declarative format for
// catalog.eno/artist.eno/release.eno/track.eno files, and the per-manifest-
// kind option tables that turn a parsed document into LocalOptions and
// Overrides (spec §4.3). No Go port of the original's enolib exists in the
// example pack, so the tokenizer/parser here is hand-rolled; the field
// shapes (scalar, list, attributed, embed) and the "=" attribute syntax are
// grounded on the snippets quoted in original_source/src/manifest/obsolete.rs.
package manifest

import (
	"fmt"
	"strings"
)

// Kind distinguishes the four field shapes a manifest document can contain.
type Kind int

const (
	// Scalar is "key: value".
	Scalar Kind = iota
	// List is "key:" followed by "- item" lines.
	List
	// Attributed is "key:" followed by "subkey = value" lines; a subkey
	// repeated more than once collects into a list under that subkey.
	Attributed
	// Embed is "key:" followed by an indented free-text block, used for
	// long-form text fields (more, synopsis overflow, payment info).
	Embed
)

// Field is one top-level entry in a manifest document.
type Field struct {
	Key   string
	Line  int
	Kind  Kind
	Value string              // Scalar
	Items []string            // List
	Attrs map[string][]string // Attributed (values in declaration order per subkey)
	Embed string              // Embed (joined with "\n", common leading indent stripped)
}

// Document is an ordered parse of a manifest file. Lookups are case-
// sensitive and exact, matching eno's plain-text key convention.
type Document struct {
	Fields []Field
}

// Get returns the first field with the given key, if any.
func (d *Document) Get(key string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// All returns every field with the given key, in declaration order — used
// for repeatable fields like "link" or "download_code".
func (d *Document) All(key string) []Field {
	var out []Field
	for _, f := range d.Fields {
		if f.Key == key {
			out = append(out, f)
		}
	}
	return out
}

// Parse tokenizes and parses raw manifest source into a Document. Blank
// lines separate fields; lines beginning with "#" at column 0 are section
// headers and are otherwise ignored (faircamp manifests since 1.0 do not
// require sections for ordinary use).
func Parse(source string) (*Document, error) {
	lines := strings.Split(source, "\n")
	doc := &Document{}

	i := 0
	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			i++
			continue
		}

		lineNo := i + 1

		if colon := strings.Index(line, ":"); colon >= 0 {
			key := strings.TrimSpace(line[:colon])
			rest := strings.TrimSpace(line[colon+1:])

			if key == "" {
				return nil, fmt.Errorf("line %d: empty field key", lineNo)
			}

			if rest != "" {
				doc.Fields = append(doc.Fields, Field{Key: key, Line: lineNo, Kind: Scalar, Value: rest})
				i++
				continue
			}

			// "key:" with nothing after the colon — look ahead to classify
			// the block that follows as List, Attributed, or Embed.
			blockStart := i + 1
			blockEnd := blockStart
			for blockEnd < len(lines) && strings.TrimSpace(lines[blockEnd]) != "" {
				blockEnd++
			}
			block := lines[blockStart:blockEnd]

			field, err := parseBlock(key, lineNo, block)
			if err != nil {
				return nil, err
			}
			doc.Fields = append(doc.Fields, field)
			i = blockEnd
			continue
		}

		return nil, fmt.Errorf("line %d: %q is not a valid field (expected \"key: value\" or \"key:\")", lineNo, trimmed)
	}

	return doc, nil
}

func parseBlock(key string, keyLine int, block []string) (Field, error) {
	if len(block) == 0 {
		return Field{Key: key, Line: keyLine, Kind: Scalar, Value: ""}, nil
	}

	allListItems := true
	allAttrs := true
	for _, raw := range block {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "- ") && trimmed != "-" {
			allListItems = false
		}
		if !strings.Contains(trimmed, "=") {
			allAttrs = false
		}
	}

	switch {
	case allListItems:
		var items []string
		for _, raw := range block {
			trimmed := strings.TrimSpace(raw)
			if trimmed == "" {
				continue
			}
			items = append(items, strings.TrimSpace(strings.TrimPrefix(trimmed, "-")))
		}
		return Field{Key: key, Line: keyLine, Kind: List, Items: items}, nil

	case allAttrs:
		attrs := make(map[string][]string)
		var order []string
		for _, raw := range block {
			trimmed := strings.TrimSpace(raw)
			if trimmed == "" {
				continue
			}
			eq := strings.Index(trimmed, "=")
			subkey := strings.TrimSpace(trimmed[:eq])
			value := strings.TrimSpace(trimmed[eq+1:])
			if _, seen := attrs[subkey]; !seen {
				order = append(order, subkey)
			}
			attrs[subkey] = append(attrs[subkey], value)
		}
		_ = order
		return Field{Key: key, Line: keyLine, Kind: Attributed, Attrs: attrs}, nil

	default:
		indent := commonIndent(block)
		var b strings.Builder
		for idx, raw := range block {
			if idx > 0 {
				b.WriteByte('\n')
			}
			if len(raw) >= indent {
				b.WriteString(raw[indent:])
			} else {
				b.WriteString(strings.TrimLeft(raw, " \t"))
			}
		}
		return Field{Key: key, Line: keyLine, Kind: Embed, Embed: b.String()}, nil
	}
}

func commonIndent(lines []string) int {
	min := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if min == -1 || n < min {
			min = n
		}
	}
	if min == -1 {
		return 0
	}
	return min
}
