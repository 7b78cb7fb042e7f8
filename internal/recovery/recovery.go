// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package recovery turns an agent's free-form answer back into paper records.
// The answer is expected to be a JSON array of objects but is generated text:
// it may be wrapped in a Markdown code fence, use single quotes, or carry
// records as Python-literal strings. Parsing walks an ordered chain of
// strategies and stops at the first that succeeds; when none does the result
// is empty. Recovery never returns an error.
package recovery

import (
	"encoding/json"
	"strings"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Strategy is one parsing attempt. Parse reports whether text was accepted
// and, if so, the decoded value.
type Strategy struct {
	Name  string
	Parse func(text string) (any, bool)
}

// Chain is an ordered list of strategies.
type Chain []Strategy

// Default is the chain used by Recover: strict JSON, then JSON with every
// single quote replaced by a double quote.
var Default = Chain{
	{Name: "strict-json", Parse: StrictJSON},
	{Name: "quote-normalized-json", Parse: QuoteNormalizedJSON},
}

// Result is the outcome of a recovery attempt.
type Result struct {
	// Records are the recovered papers, in input order. Never nil.
	Records []types.Paper

	// Strategy names the strategy that parsed the text; empty if none did.
	Strategy string

	// Skipped counts array elements that could not be mapped to a record.
	Skipped int
}

// Recover parses raw with the Default chain.
func Recover(raw string) []types.Paper {
	return Default.Recover(raw).Records
}

// Recover strips a surrounding code fence from raw, then tries each strategy
// in order and maps the first successful parse to records.
func (c Chain) Recover(raw string) Result {
	text := StripFence(raw)
	for _, s := range c {
		v, ok := s.Parse(text)
		if !ok {
			continue
		}
		records, skipped := mapRecords(v)
		return Result{Records: records, Strategy: s.Name, Skipped: skipped}
	}
	return Result{Records: []types.Paper{}}
}

// StripFence trims raw and, when it both starts and ends with a ``` marker,
// removes the markers, a language tag on the opening line (e.g. "json"), and
// the surrounding whitespace. Other text is returned trimmed.
func StripFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") {
		return text
	}
	text = strings.Trim(text, "`")

	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		tag := strings.TrimSpace(text[:nl])
		if tag != "" && !strings.ContainsAny(tag, "[{\"' ") {
			text = text[nl+1:]
		}
	}
	return strings.TrimSpace(text)
}

// StrictJSON accepts text that is a single valid JSON value.
func StrictJSON(text string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, false
	}
	return v, true
}

// QuoteNormalizedJSON replaces every single quote with a double quote and
// retries StrictJSON. The substitution ignores context, so a value holding an
// apostrophe ("Bayes' rule") breaks the parse or corrupts the value.
func QuoteNormalizedJSON(text string) (any, bool) {
	return StrictJSON(strings.ReplaceAll(text, "'", `"`))
}
