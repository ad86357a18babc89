package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
	"sync"
)

// Renderer renders notification templates from a tenant-specific
// template directory. The default tenant's template path carries a
// "/default/" segment that materialization rewrites per tenant, so each
// tenant can ship its own branded templates while falling back to the
// shared set.
type Renderer struct {
	mu     sync.Mutex
	parsed map[string]*template.Template
}

// NewRenderer creates a template renderer.
func NewRenderer() *Renderer {
	return &Renderer{parsed: make(map[string]*template.Template)}
}

// Render executes the named template from dir with the given data.
// Parsed templates are cached by absolute path.
func (r *Renderer) Render(dir, name string, data any) (string, error) {
	path := filepath.Join(dir, name)

	r.mu.Lock()
	tpl, ok := r.parsed[path]
	r.mu.Unlock()

	if !ok {
		var err error
		tpl, err = template.ParseFiles(path)
		if err != nil {
			return "", fmt.Errorf("parse template %s: %w", path, err)
		}
		r.mu.Lock()
		r.parsed[path] = tpl
		r.mu.Unlock()
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", path, err)
	}
	return buf.String(), nil
}
