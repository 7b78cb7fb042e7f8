// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file holds one secret: the filename is the key and the trimmed file
// contents are the value.
//
// Known keys: llm-api-key (fills llm.api_key) and arxiv-user-agent (fills
// catalog.user_agent).
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultDir is the secrets directory read at startup, relative to the
// working directory.
const DefaultDir = ".secrets"

// Known secret file names.
const (
	LLMAPIKey      = "llm-api-key"
	ArxivUserAgent = "arxiv-user-agent"
)

// Store maps secret names to values.
type Store map[string]string

// Load reads every regular, non-hidden file in dir. A missing directory is
// not an error and yields an empty Store. Files that cannot be read are
// reported on warn and skipped; empty files are ignored.
func Load(dir string, warn io.Writer) (Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Store)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(warn, "warning: could not read secret %s: %v\n", name, err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			s[name] = value
		}
	}
	return s, nil
}

// Or returns fallback when it is set, otherwise the secret named key, or ""
// if there is none. Explicit configuration always wins over the directory.
func (s Store) Or(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return s[key]
}

// Names returns the loaded secret names in sorted order. Values are never
// listed.
func (s Store) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
