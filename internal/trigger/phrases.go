package trigger

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// DefaultLanguage is used when the active language has no phrase set.
const DefaultLanguage = "English (US)"

var builtinPhrases = map[string][]string{
	"English (US)": {
		"I need help right now",
		"This is an emergency, please help me",
		"I am in danger, help",
	},
	"Hindi": {
		"मुझे अभी मदद चाहिए",
		"यह एक आपात स्थिति है, कृपया मेरी मदद करें",
		"मैं खतरे में हूँ, मदद करें",
	},
	"Spanish": {
		"Necesito ayuda ahora mismo",
		"Esto es una emergencia, por favor ayúdame",
		"Estoy en peligro, ayuda",
	},
}

var languageCodes = map[string]string{
	"English (US)": "en-US",
	"Hindi":        "hi",
	"Spanish":      "es",
}

// LanguageCode returns the BCP-47 code speech providers expect for a display
// language, or "" when the language is unknown.
func LanguageCode(language string) string {
	return languageCodes[language]
}

// Catalog maps a language to its trigger phrases.
type Catalog struct {
	phrases map[string][]string
}

// NewCatalog returns the built-in phrase sets, extended by the phrases file
// at path when one exists. A file section replaces the built-in set for that
// language.
func NewCatalog(path string) (*Catalog, error) {
	c := &Catalog{phrases: make(map[string][]string, len(builtinPhrases))}
	for lang, phrases := range builtinPhrases {
		c.phrases[lang] = append([]string(nil), phrases...)
	}

	if strings.TrimSpace(path) == "" {
		return c, nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return nil, fmt.Errorf("failed to read phrases file %q: %w", path, err)
	}

	sections, err := parsePhrases(string(contents))
	if err != nil {
		return nil, fmt.Errorf("failed to parse phrases file %q: %w", path, err)
	}
	for lang, phrases := range sections {
		c.phrases[lang] = phrases
	}
	return c, nil
}

// Phrases returns the phrase set for lang, falling back to DefaultLanguage.
func (c *Catalog) Phrases(lang string) []string {
	if phrases, ok := c.phrases[lang]; ok && len(phrases) > 0 {
		return append([]string(nil), phrases...)
	}
	return append([]string(nil), c.phrases[DefaultLanguage]...)
}

// Languages lists the configured languages in sorted order.
func (c *Catalog) Languages() []string {
	langs := make([]string, 0, len(c.phrases))
	for lang := range c.phrases {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Has reports whether lang has its own phrase set.
func (c *Catalog) Has(lang string) bool {
	_, ok := c.phrases[lang]
	return ok
}

// parsePhrases reads "[Language]" headers followed by one phrase per line.
func parsePhrases(contents string) (map[string][]string, error) {
	sections := make(map[string][]string)
	current := ""

	for index, raw := range strings.Split(contents, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return nil, fmt.Errorf("line %d: unterminated section header", index+1)
			}
			name := strings.TrimSpace(line[1 : len(line)-1])
			if name == "" {
				return nil, fmt.Errorf("line %d: empty section name", index+1)
			}
			current = name
			if _, ok := sections[current]; !ok {
				sections[current] = nil
			}
			continue
		}

		if current == "" {
			return nil, fmt.Errorf("line %d: phrase outside of a language section", index+1)
		}
		sections[current] = append(sections[current], line)
	}

	for lang, phrases := range sections {
		if len(phrases) == 0 {
			return nil, fmt.Errorf("section %q has no phrases", lang)
		}
	}
	return sections, nil
}
