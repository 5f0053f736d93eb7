// Package prompts holds the AI instruction templates used by the optimizer. Templates live in
// embedded JSON files keyed by name and use {{.Key}} placeholders.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// Template files
const (
	Optimization = "optimization.json"
	Questions    = "questions.json"
	Details      = "details.json"
)

var placeholderPattern = regexp.MustCompile(`\{\{\.([A-Za-z][A-Za-z0-9]*)\}\}`)

var (
	loadOnce sync.Once
	files    map[string]map[string]string
	loadErr  error
)

// UnfilledError reports placeholders a Render call left without a value
type UnfilledError struct {
	File    string
	Key     string
	Missing []string
}

func (e *UnfilledError) Error() string {
	return fmt.Sprintf("prompt %s/%s: no value for %s", e.File, e.Key, strings.Join(e.Missing, ", "))
}

// load parses every embedded file on first use
func load() (map[string]map[string]string, error) {
	loadOnce.Do(func() {
		entries, err := promptFiles.ReadDir(".")
		if err != nil {
			loadErr = fmt.Errorf("failed to list prompt files: %w", err)
			return
		}
		parsed := make(map[string]map[string]string, len(entries))
		for _, entry := range entries {
			data, err := promptFiles.ReadFile(entry.Name())
			if err != nil {
				loadErr = fmt.Errorf("failed to read prompt file %s: %w", entry.Name(), err)
				return
			}
			var templates map[string]string
			if err := json.Unmarshal(data, &templates); err != nil {
				loadErr = fmt.Errorf("failed to parse prompt file %s: %w", entry.Name(), err)
				return
			}
			parsed[entry.Name()] = templates
		}
		files = parsed
	})
	return files, loadErr
}

// Get returns the raw template stored under key in file (e.g. Get(Optimization, "quick-optimize")).
func Get(file, key string) (string, error) {
	all, err := load()
	if err != nil {
		return "", err
	}
	templates, ok := all[file]
	if !ok {
		return "", fmt.Errorf("prompt file %s not found", file)
	}
	template, ok := templates[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, file)
	}
	return template, nil
}

// MustGet is Get for templates that are known to exist; it panics otherwise.
func MustGet(file, key string) string {
	template, err := Get(file, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return template
}

// Format replaces {{.Key}} placeholders with values from data in a single pass, so
// placeholder-like text inside a value is never expanded. Unknown placeholders are left as is.
func Format(template string, data map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if value, ok := data[name]; ok {
			return value
		}
		return match
	})
}

// Placeholders returns the distinct placeholder names in template, sorted
func Placeholders(template string) []string {
	seen := map[string]bool{}
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	sort.Strings(names)
	return names
}

// Render fills the template under key with data. Every placeholder must have a value.
func Render(file, key string, data map[string]string) (string, error) {
	template, err := Get(file, key)
	if err != nil {
		return "", err
	}
	var missing []string
	for _, name := range Placeholders(template) {
		if _, ok := data[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", &UnfilledError{File: file, Key: key, Missing: missing}
	}
	return Format(template, data), nil
}

// MustRender is Render for call sites whose data always covers the template
func MustRender(file, key string, data map[string]string) string {
	out, err := Render(file, key, data)
	if err != nil {
		panic(err.Error())
	}
	return out
}
