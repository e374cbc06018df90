// Package sfc splits a single-file component into its top-level blocks.
//
// Only the block boundaries are recognized; block contents are returned
// verbatim. Module-scoped script blocks in a special dialect (see
// SpecialScriptLangs) are consumed but not surfaced in the Descriptor.
package sfc

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// SpecialScriptLangs is the allow-list of module-scoped script dialects that
// are preserved verbatim by the rewriter rather than re-serialized.
var SpecialScriptLangs = []string{"wxs", "sjs", "filter.js"}

// IsSpecialScriptLang reports whether lang is one of SpecialScriptLangs.
func IsSpecialScriptLang(lang string) bool {
	for _, l := range SpecialScriptLangs {
		if l == lang {
			return true
		}
	}
	return false
}

// Block is one top-level element of a component.
type Block struct {
	// Type is the lowercased tag name: template, script, style or a custom block name.
	Type    string
	Content string
	Attrs   map[string]string
	Lang    string
	Setup   bool
	Scoped  bool
	// Start and End are the byte offsets of Content in the source.
	Start int
	End   int
}

// Descriptor holds the blocks of a parsed component.
type Descriptor struct {
	Source       string
	Template     *Block
	Script       *Block
	ScriptSetup  *Block
	Styles       []Block
	CustomBlocks []Block
}

// ParseError describes a structural problem at a byte offset.
type ParseError struct {
	Block  string
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("<%s> at offset %d: %s", e.Block, e.Offset, e.Reason)
}

type openBlock struct {
	block    Block
	tagStart int
	depth    int
	special  bool
}

// Parse splits source into blocks.
func Parse(source string) (*Descriptor, error) {
	z := html.NewTokenizer(strings.NewReader(source))
	d := &Descriptor{Source: source}

	var open *openBlock
	offset := 0
	for {
		tt := z.Next()
		tokenStart := offset
		offset += len(z.Raw())

		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !stderrors.Is(err, io.EOF) {
				return nil, fmt.Errorf("tokenize component: %w", err)
			}
			if open != nil {
				return nil, &ParseError{Block: open.block.Type, Offset: open.tagStart, Reason: "unterminated block"}
			}
			return d, nil

		case html.StartTagToken, html.SelfClosingTagToken:
			name, attrs := readTag(z)
			if tt == html.SelfClosingTagToken {
				// Self-closing raw-text tags such as <script src="x"/> carry no body.
				z.NextIsNotRawText()
			}
			if open != nil {
				if tt == html.StartTagToken && name == open.block.Type {
					open.depth++
				}
				continue
			}

			block := newBlock(name, attrs)
			special := name == "script" && isSpecialScript(attrs)
			if tt == html.SelfClosingTagToken {
				block.Start, block.End = offset, offset
				if !special {
					if err := d.add(block, tokenStart); err != nil {
						return nil, err
					}
				}
				continue
			}
			block.Start = offset
			open = &openBlock{block: block, tagStart: tokenStart, depth: 1, special: special}

		case html.EndTagToken:
			if open == nil {
				continue
			}
			name, _ := z.TagName()
			if string(name) != open.block.Type {
				continue
			}
			open.depth--
			if open.depth > 0 {
				continue
			}
			open.block.End = tokenStart
			open.block.Content = source[open.block.Start:open.block.End]
			if !open.special {
				if err := d.add(open.block, open.tagStart); err != nil {
					return nil, err
				}
			}
			open = nil
		}
	}
}

func readTag(z *html.Tokenizer) (string, map[string]string) {
	nameBytes, hasAttr := z.TagName()
	name := string(nameBytes)
	attrs := make(map[string]string)
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		attrs[string(key)] = string(val)
	}
	return name, attrs
}

func newBlock(name string, attrs map[string]string) Block {
	block := Block{Type: name, Attrs: attrs, Lang: attrs["lang"]}
	if name == "script" {
		_, block.Setup = attrs["setup"]
	}
	if name == "style" {
		_, block.Scoped = attrs["scoped"]
	}
	return block
}

func isSpecialScript(attrs map[string]string) bool {
	_, hasModule := attrs["module"]
	return hasModule && IsSpecialScriptLang(attrs["lang"])
}

func (d *Descriptor) add(b Block, tagStart int) error {
	switch {
	case b.Type == "template":
		if d.Template != nil {
			return &ParseError{Block: b.Type, Offset: tagStart, Reason: "duplicate template block"}
		}
		d.Template = &b
	case b.Type == "script" && b.Setup:
		if d.ScriptSetup != nil {
			return &ParseError{Block: b.Type, Offset: tagStart, Reason: "duplicate script setup block"}
		}
		d.ScriptSetup = &b
	case b.Type == "script":
		if d.Script != nil {
			return &ParseError{Block: b.Type, Offset: tagStart, Reason: "duplicate script block"}
		}
		d.Script = &b
	case b.Type == "style":
		d.Styles = append(d.Styles, b)
	default:
		d.CustomBlocks = append(d.CustomBlocks, b)
	}
	return nil
}
