// Package template renders the text bodies returned by tools.
package template

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Context is the data a tool template sees
type Context struct {
	Tool string
	Args map[string]any
}

// NewContext creates a template context for tool
func NewContext(tool string) *Context {
	return &Context{
		Tool: tool,
		Args: make(map[string]any),
	}
}

// Set stores an argument and returns the context for chaining
func (c *Context) Set(key string, value any) *Context {
	c.Args[key] = value
	return c
}

// Renderer parses templates once and caches them by content
type Renderer struct {
	funcs     template.FuncMap
	mu        sync.RWMutex
	templates map[string]*template.Template
}

// NewRenderer creates a renderer with the sprig functions plus extra
func NewRenderer(extra template.FuncMap) *Renderer {
	funcs := sprig.TxtFuncMap()
	for name, fn := range extra {
		funcs[name] = fn
	}
	return &Renderer{
		funcs:     funcs,
		templates: make(map[string]*template.Template),
	}
}

// generateTemplateName generates a unique name for a template based on its content
func generateTemplateName(tmpl string) string {
	hash := sha256.Sum256([]byte(tmpl))
	return fmt.Sprintf("tmpl_%s", hex.EncodeToString(hash[:8]))
}

// Render renders a template with the given context
func (r *Renderer) Render(tmpl string, ctx *Context) (string, error) {
	t, err := r.lookup(tmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, ctx); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// MustParse parses tmpl eagerly and panics on a syntax error. It is meant
// for templates compiled into the binary.
func (r *Renderer) MustParse(tmpl string) {
	if _, err := r.lookup(tmpl); err != nil {
		panic(err)
	}
}

func (r *Renderer) lookup(tmpl string) (*template.Template, error) {
	name := generateTemplateName(tmpl)

	r.mu.RLock()
	t, ok := r.templates[name]
	r.mu.RUnlock()
	if ok {
		return t, nil
	}

	t, err := template.New(name).Funcs(r.funcs).Parse(tmpl)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.templates[name] = t
	r.mu.Unlock()
	return t, nil
}
