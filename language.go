package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LanguageTable maps file extensions (without the leading dot) to the
// language tag used on markdown code fences.
type LanguageTable struct {
	byExt map[string]string
}

// languageEntry is one language in an optional languages.yml override
// file, keyed by language tag.
type languageEntry struct {
	Extensions []string `yaml:"extensions"`
}

// defaultLanguageTable returns the built-in extension mapping.
func defaultLanguageTable() *LanguageTable {
	return &LanguageTable{byExt: map[string]string{
		"py":   "python",
		"c":    "c",
		"cpp":  "cpp",
		"java": "java",
		"js":   "javascript",
		"ts":   "typescript",
		"html": "html",
		"css":  "css",
		"xml":  "xml",
		"json": "json",
		"yaml": "yaml",
		"yml":  "yaml",
		"sh":   "bash",
		"rb":   "ruby",
	}}
}

// loadLanguageTable builds the table and layers on overrides from a
// languages.yml found in the standard config locations, if any. Parse
// problems are reported on errw and the built-in table is kept.
func loadLanguageTable(errw io.Writer) *LanguageTable {
	table := defaultLanguageTable()

	var searchPaths []string
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".config", "promptcat"))
	}
	searchPaths = append(searchPaths, ".")

	for _, dir := range searchPaths {
		path := filepath.Join(dir, "languages.yml")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := table.applyOverrides(path); err != nil {
			fmt.Fprintf(errw, "Warning: could not load language overrides from %s: %v\n", path, err)
		}
		break
	}

	return table
}

// applyOverrides merges the mappings from a languages.yml file into the
// table. File entries win over the built-in defaults.
func (t *LanguageTable) applyOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var langs map[string]languageEntry
	if err := yaml.Unmarshal(data, &langs); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	for tag, entry := range langs {
		for _, ext := range entry.Extensions {
			if len(ext) > 0 && ext[0] == '.' {
				ext = ext[1:]
			}
			if ext == "" {
				continue
			}
			t.byExt[ext] = tag
		}
	}
	return nil
}

// TagForPath returns the fence language tag for a file path, or the
// empty string when the extension is not mapped.
func (t *LanguageTable) TagForPath(path string) string {
	ext := filepath.Ext(path)
	if len(ext) > 0 && ext[0] == '.' {
		ext = ext[1:]
	}
	return t.byExt[ext]
}
