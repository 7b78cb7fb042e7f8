// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-digest pipeline.
// Paper is produced by the catalog client, carried through the agent as JSON,
// recovered from the agent's text, and rendered into the report.
package types

// Placeholders substituted for fields missing from a recovered record.
const (
	MissingTitle   = "N/A"
	MissingSummary = "No summary available"
	MissingURL     = "#"
)

// Paper holds the metadata of one catalog entry.
type Paper struct {
	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Summary is the paper abstract, or the agent's summary of it.
	Summary string `json:"summary" yaml:"summary"`

	// URL is the canonical entry identifier (e.g. "http://arxiv.org/abs/2403.00001v1").
	// Assumed unique within a single run.
	URL string `json:"url" yaml:"url"`
}
