package rewrite

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/pageinject/internal/foundation/errors"
	"git.home.luguber.info/inful/pageinject/internal/sfc"
	"git.home.luguber.info/inful/pageinject/internal/sourcemap"
)

// Result is the outcome of Transform. On failure Code is the original source,
// Map is nil and Errors holds the diagnostics.
type Result struct {
	Code   string
	Map    *sourcemap.Map
	Errors []string
	// Err is the classified failure behind Errors.
	Err error
}

// Parts are the generated pieces of a rewritten document.
type Parts struct {
	PageMeta       string
	Template       string
	SpecialScripts string
	ScriptSetup    string
	Script         string
	Style          string
}

// Assemble concatenates parts in their fixed document order and trims the result.
func Assemble(p Parts) string {
	return strings.TrimSpace(strings.Join([]string{
		"<template>",
		p.PageMeta,
		p.Template,
		"</template>",
		p.SpecialScripts,
		p.ScriptSetup,
		p.Script,
		p.Style,
	}, "\n"))
}

// DiffToPositionMap maps the whole of rewritten back to the start of original.
// It returns nil when nothing changed.
func DiffToPositionMap(documentID, original, rewritten string) *sourcemap.Map {
	if original == rewritten {
		return nil
	}
	return sourcemap.Overwrite(documentID, rewritten)
}

// GenerateParts builds the rewritten pieces of a parsed document.
func GenerateParts(d *sfc.Descriptor, labels []string, fragments Fragments) (Parts, error) {
	body := ""
	if d.Template != nil {
		body = d.Template.Content
	}

	template, err := RewriteTemplate(body, SynthesizeFragmentMarkup(labels, fragments))
	if err != nil {
		return Parts{}, err
	}
	return Parts{
		PageMeta:       ExtractPageMeta(body),
		Template:       template,
		SpecialScripts: ExtractSpecialScripts(d.Source),
		ScriptSetup:    SerializeScript(d.ScriptSetup),
		Script:         SerializeScript(d.Script),
		Style:          SerializeStyles(d.Styles),
	}, nil
}

// Transform rewrites the page documentID with the given labels.
// It never fails: parse and rewrite errors return the source unchanged with diagnostics.
func Transform(documentID, source string, labels []string, fragments Fragments) (res Result) {
	d, err := sfc.Parse(source)
	if err != nil {
		return failed(source, errors.DocumentParseError(documentID, err))
	}

	defer func() {
		if r := recover(); r != nil {
			res = failed(source, errors.RewriteError(documentID, fmt.Errorf("panic: %v", r)))
		}
	}()

	parts, err := GenerateParts(d, labels, fragments)
	if err != nil {
		return failed(source, errors.RewriteError(documentID, err))
	}
	code := Assemble(parts)
	return Result{Code: code, Map: DiffToPositionMap(documentID, source, code)}
}

func failed(source string, err *errors.ClassifiedError) Result {
	return Result{Code: source, Errors: []string{err.Error()}, Err: err}
}
