// Package prompts holds the instruction templates sent to the remote CV
// parser. Templates live in JSON files embedded at compile time.
package prompts

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"
	"text/template"
)

//go:embed *.json
var promptFiles embed.FS

// CV extraction prompt file and keys.
const (
	CVFile      = "cv.json"
	CVSystemKey = "extract-cv-system"
	CVUserKey   = "extract-cv-user"
)

// Catalog is the parsed content of one prompt file. Values are Go
// templates; a plain string is a template without actions.
type Catalog struct {
	name      string
	templates map[string]*template.Template
}

// Load parses an embedded prompt file. Every value must be a valid template.
func Load(filename string) (*Catalog, error) {
	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	c := &Catalog{name: filename, templates: make(map[string]*template.Template, len(raw))}
	for key, text := range raw {
		tmpl, err := template.New(key).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("prompt %s in %s: %w", key, filename, err)
		}
		c.templates[key] = tmpl
	}
	return c, nil
}

// Keys returns the prompt keys, sorted.
func (c *Catalog) Keys() []string {
	return slices.Sorted(maps.Keys(c.templates))
}

// Render executes the prompt named key with data.
func (c *Catalog) Render(key string, data any) (string, error) {
	tmpl, ok := c.templates[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, c.name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", key, err)
	}
	return buf.String(), nil
}

var cvCatalog = sync.OnceValues(func() (*Catalog, error) { return Load(CVFile) })

// CVExtraction returns the fixed system instruction and the user message
// wrapping the document text for the remote CV parser.
func CVExtraction(text string) (system, user string, err error) {
	catalog, err := cvCatalog()
	if err != nil {
		return "", "", err
	}
	if system, err = catalog.Render(CVSystemKey, nil); err != nil {
		return "", "", err
	}
	if user, err = catalog.Render(CVUserKey, struct{ Text string }{text}); err != nil {
		return "", "", err
	}
	return system, user, nil
}
