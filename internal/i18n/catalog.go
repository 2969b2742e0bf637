// Package i18n holds the localized strings shown to users.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// Fallback is the language every lookup falls back to.
const Fallback = "en"

//go:embed catalog/*.json
var catalogFS embed.FS

type language struct {
	Name  string              `json:"name"`
	Text  map[string]string   `json:"text"`
	Lines map[string][]string `json:"lines"`
}

// Catalog is an immutable set of languages.
type Catalog struct {
	langs map[string]*language
}

// LoadCatalog parses the built-in catalog.
func LoadCatalog() (*Catalog, error) {
	entries, err := fs.Glob(catalogFS, "catalog/*.json")
	if err != nil {
		return nil, err
	}
	c := &Catalog{langs: make(map[string]*language, len(entries))}
	for _, name := range entries {
		data, err := catalogFS.ReadFile(name)
		if err != nil {
			return nil, err
		}
		var l language
		if err := json.Unmarshal(data, &l); err != nil {
			return nil, fmt.Errorf("i18n: %s: %w", name, err)
		}
		c.langs[strings.TrimSuffix(path.Base(name), ".json")] = &l
	}
	if _, ok := c.langs[Fallback]; !ok {
		return nil, fmt.Errorf("i18n: catalog has no %q", Fallback)
	}
	return c, nil
}

// MustLoadCatalog is LoadCatalog for package initialisation and tests.
func MustLoadCatalog() *Catalog {
	c, err := LoadCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

// Languages lists the language codes, sorted.
func (c *Catalog) Languages() []string {
	out := make([]string, 0, len(c.langs))
	for code := range c.langs {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Has reports whether code is a known language.
func (c *Catalog) Has(code string) bool {
	_, ok := c.langs[code]
	return ok
}

// Name is the language's own name for itself, or code when unknown.
func (c *Catalog) Name(code string) string {
	if l, ok := c.langs[code]; ok && l.Name != "" {
		return l.Name
	}
	return code
}

// Text returns key in lang, then in English, then "[missing: key]".
func (c *Catalog) Text(lang, key string) string {
	for _, code := range []string{lang, Fallback} {
		if l, ok := c.langs[code]; ok {
			if s, ok := l.Text[key]; ok {
				return s
			}
		}
	}
	return "[missing: " + key + "]"
}

// Lines returns the list stored under key with the same fallback as Text.
// A key missing everywhere yields nil.
func (c *Catalog) Lines(lang, key string) []string {
	for _, code := range []string{lang, Fallback} {
		if l, ok := c.langs[code]; ok {
			if lines := l.Lines[key]; len(lines) > 0 {
				return lines
			}
		}
	}
	return nil
}

// Format substitutes {name} placeholders in s.
func Format(s string, args map[string]string) string {
	if len(args) == 0 {
		return s
	}
	pairs := make([]string, 0, 2*len(args))
	for k, v := range args {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(s)
}
