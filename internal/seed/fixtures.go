package seed

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/themes.yml
var fixtureFS embed.FS

// ThemeFixture is one entry of the built-in theme list.
type ThemeFixture struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type themeFile struct {
	Themes []ThemeFixture `yaml:"themes"`
}

// ParseThemes decodes a theme fixture document, rejecting blank or repeated names.
func ParseThemes(raw []byte) ([]ThemeFixture, error) {
	var doc themeFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse theme fixture: %w", err)
	}

	seen := make(map[string]struct{}, len(doc.Themes))
	out := make([]ThemeFixture, 0, len(doc.Themes))
	for i, t := range doc.Themes {
		t.Name = strings.TrimSpace(t.Name)
		t.Description = strings.TrimSpace(t.Description)
		if t.Name == "" {
			return nil, fmt.Errorf("theme fixture entry %d has no name", i)
		}
		key := strings.ToLower(t.Name)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("theme fixture lists %q more than once", t.Name)
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}

// BuiltInThemes returns the embedded theme list.
func BuiltInThemes() ([]ThemeFixture, error) {
	raw, err := fixtureFS.ReadFile("fixtures/themes.yml")
	if err != nil {
		return nil, err
	}
	return ParseThemes(raw)
}
