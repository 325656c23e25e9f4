// Package prompt resolves {key} placeholders in block prompt templates.
package prompt

import "strings"

// Resolve substitutes placeholders in template. Order matters:
//
//  1. every {key} present in vars is replaced with its value;
//  2. if {language1} still remains and vars carries no "language1" key, it is
//     replaced with selectedLanguage (legacy presets written before per-block
//     language variables existed);
//  3. any remaining {language} is replaced with selectedLanguage.
//
// No other placeholder syntax is recognized. Resolve is pure and deterministic.
func Resolve(template string, vars map[string]string, selectedLanguage string) string {
	out := template
	for key, value := range vars {
		out = strings.ReplaceAll(out, "{"+key+"}", value)
	}
	if _, ok := vars["language1"]; !ok && strings.Contains(out, "{language1}") {
		out = strings.ReplaceAll(out, "{language1}", selectedLanguage)
	}
	return strings.ReplaceAll(out, "{language}", selectedLanguage)
}
