// Package i18n holds the embedded message catalogues and resolves
// (language, key) pairs to display strings.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLanguage is used when no language preference has been stored.
const DefaultLanguage = "cn"

//go:embed locales/*.yaml
var locales embed.FS

// Translator maps message keys to localized strings.
type Translator struct {
	fallback string
	catalogs map[string]map[string]string
}

// New loads every embedded catalogue. The file name (minus extension) is
// the language code.
func New() (*Translator, error) {
	entries, err := locales.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to list locales: %w", err)
	}

	t := &Translator{fallback: DefaultLanguage, catalogs: make(map[string]map[string]string)}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || path.Ext(name) != ".yaml" {
			continue
		}
		data, err := locales.ReadFile(path.Join("locales", name))
		if err != nil {
			return nil, fmt.Errorf("failed to read locale %s: %w", name, err)
		}
		var catalog map[string]string
		if err := yaml.Unmarshal(data, &catalog); err != nil {
			return nil, fmt.Errorf("failed to parse locale %s: %w", name, err)
		}
		t.catalogs[strings.TrimSuffix(name, ".yaml")] = catalog
	}

	if _, ok := t.catalogs[t.fallback]; !ok {
		return nil, fmt.Errorf("default locale %q is missing", t.fallback)
	}
	return t, nil
}

// T returns the message for key in lang. An unknown language uses the
// default catalogue; an unknown key is echoed back.
func (t *Translator) T(lang, key string) string {
	if catalog, ok := t.catalogs[lang]; ok {
		if msg, ok := catalog[key]; ok {
			return msg
		}
	}
	if msg, ok := t.catalogs[t.fallback][key]; ok {
		return msg
	}
	return key
}

// Has reports whether lang has its own catalogue.
func (t *Translator) Has(lang string) bool {
	_, ok := t.catalogs[lang]
	return ok
}

// Languages returns the available language codes, sorted.
func (t *Translator) Languages() []string {
	langs := make([]string, 0, len(t.catalogs))
	for lang := range t.catalogs {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Catalog returns a copy of the messages for lang, filled in from the
// default catalogue for keys lang does not define.
func (t *Translator) Catalog(lang string) map[string]string {
	out := make(map[string]string, len(t.catalogs[t.fallback]))
	for k, v := range t.catalogs[t.fallback] {
		out[k] = v
	}
	for k, v := range t.catalogs[lang] {
		out[k] = v
	}
	return out
}
