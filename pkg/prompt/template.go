package prompt

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"
	"text/template"
)

// Template wraps a text/template read from a file system. Missing keys are
// execution errors so an incomplete prompt is never sent upstream.
type Template struct {
	fsys  fs.FS
	name  string
	funcs template.FuncMap

	mu   sync.RWMutex
	tmpl *template.Template
	hash string
}

// NewTemplate parses the template file at path on disk.
func NewTemplate(p string, funcs template.FuncMap) (*Template, error) {
	if p == "" {
		return nil, fmt.Errorf("prompt template path is empty")
	}
	return NewTemplateFS(os.DirFS(filepath.Dir(p)), filepath.Base(p), funcs)
}

// NewTemplateFS parses the named template from fsys, typically an embed.FS.
func NewTemplateFS(fsys fs.FS, name string, funcs template.FuncMap) (*Template, error) {
	if fsys == nil || name == "" {
		return nil, fmt.Errorf("prompt template source is empty")
	}
	t := &Template{fsys: fsys, name: name, funcs: funcs}
	if err := t.reload(); err != nil {
		return nil, err
	}
	return t, nil
}

// Name is the template file name.
func (t *Template) Name() string { return t.name }

// Render executes the template against data.
func (t *Template) Render(data any) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute prompt template %q: %w", t.name, err)
	}
	return buf.String(), nil
}

// Reload reparses the template from its source.
func (t *Template) Reload() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reload()
}

func (t *Template) reload() error {
	data, err := fs.ReadFile(t.fsys, t.name)
	if err != nil {
		return fmt.Errorf("read prompt template %q: %w", t.name, err)
	}

	tmpl := template.New(path.Base(t.name)).Option("missingkey=error")
	if len(t.funcs) > 0 {
		tmpl = tmpl.Funcs(t.funcs)
	}
	if _, err := tmpl.Parse(string(data)); err != nil {
		return fmt.Errorf("parse prompt template %q: %w", t.name, err)
	}
	t.tmpl = tmpl
	t.hash = computeDigest(data)
	return nil
}

// Digest is the sha256 of the template source, hex encoded.
func (t *Template) Digest() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.hash
}
