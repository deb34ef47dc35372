// Package analytics renders the optional Plausible Analytics script tag.
package analytics

import (
	"html/template"
	"slices"
	"strings"

	"github.com/mrlokans/library/internal/config"
)

// DefaultScriptURL is the hosted Plausible script.
const DefaultScriptURL = "https://plausible.io/js/script.js"

// PlausibleConfig holds the effective Plausible Analytics configuration
type PlausibleConfig struct {
	Enabled    bool
	Domain     string
	ScriptURL  string
	Extensions []string
}

// FromConfig builds the effective configuration. Analytics are enabled only
// when a domain is set; unknown extensions are dropped.
func FromConfig(cfg config.Plausible) *PlausibleConfig {
	scriptURL := cfg.ScriptURL
	if scriptURL == "" {
		scriptURL = DefaultScriptURL
	}

	var extensions []string
	for _, ext := range parseExtensions(cfg.Extensions) {
		if IsValidExtension(ext) {
			extensions = append(extensions, ext)
		}
	}

	return &PlausibleConfig{
		Enabled:    cfg.Domain != "",
		Domain:     cfg.Domain,
		ScriptURL:  scriptURL,
		Extensions: extensions,
	}
}

// BuildScriptURL constructs the Plausible script URL with extensions
func BuildScriptURL(baseURL string, extensions []string) string {
	if len(extensions) == 0 {
		return baseURL
	}

	// script.js becomes script.outbound-links.file-downloads.js
	if base, found := strings.CutSuffix(baseURL, ".js"); found {
		return base + "." + strings.Join(extensions, ".") + ".js"
	}

	return baseURL
}

// ScriptTag returns safe HTML for the Plausible script tag, or "" when disabled.
func (c *PlausibleConfig) ScriptTag() template.HTML {
	if c == nil || !c.Enabled || c.Domain == "" {
		return ""
	}

	scriptURL := BuildScriptURL(c.ScriptURL, c.Extensions)

	return template.HTML(`<script defer data-domain="` + template.HTMLEscapeString(c.Domain) + `" src="` + template.HTMLEscapeString(scriptURL) + `"></script>`)
}

// parseExtensions splits comma-separated extensions and trims whitespace
func parseExtensions(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ValidExtensions lists the known Plausible script extensions
var ValidExtensions = []string{
	"outbound-links",
	"file-downloads",
	"tagged-events",
	"hash",
	"compat",
	"local",
	"manual",
	"pageview-props",
	"revenue",
}

// IsValidExtension checks if an extension is known
func IsValidExtension(ext string) bool {
	return slices.Contains(ValidExtensions, ext)
}
