// Package language keeps the set of known language definitions, maps file
// paths to them and caches their compiled highlighters.
package language

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/zjrosen/hilite/internal/cachemanager"
	"github.com/zjrosen/hilite/internal/highlight"
	"github.com/zjrosen/hilite/internal/log"
)

// ErrUnknownLanguage is returned when no definition matches a name or path.
var ErrUnknownLanguage = errors.New("unknown language")

// Registry maps language names and file extensions to definitions.
// Compiled highlighters are built on first use and cached until the
// definition changes or the compile options are replaced.
// Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]highlight.Definition
	byExt map[string]string
	opts  []highlight.Option

	compiled *cachemanager.Manager[*highlight.Highlighter]
}

// NewRegistry creates an empty registry. opts are applied to every compile.
func NewRegistry(opts ...highlight.Option) *Registry {
	return &Registry{
		defs:     make(map[string]highlight.Definition),
		byExt:    make(map[string]string),
		opts:     opts,
		compiled: cachemanager.New[*highlight.Highlighter]("highlighters", cachemanager.NoExpiration, cachemanager.DefaultCleanupInterval),
	}
}

// Default returns a registry holding the built-in languages.
func Default(opts ...highlight.Option) *Registry {
	r := NewRegistry(opts...)
	if err := r.Register(highlight.Python()); err != nil {
		panic(fmt.Sprintf("built-in python definition: %v", err))
	}
	return r
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register compiles def to validate it and adds it under its name,
// replacing any definition with the same name (case-insensitive).
// Extensions claimed by an earlier language move to def.
func (r *Registry) Register(def highlight.Definition) error {
	key := normalize(def.Name)
	if key == "" {
		return fmt.Errorf("registering language: name is required")
	}

	h, err := highlight.FromDefinition(def, r.options()...)
	if err != nil {
		return fmt.Errorf("registering language %s: %w", def.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, replaced := r.defs[key]; replaced {
		for ext, owner := range r.byExt {
			if owner == key {
				delete(r.byExt, ext)
			}
		}
		log.Debug(log.CatLanguage, "Replacing language", "language", key)
	}
	r.defs[key] = def.Clone()
	for _, ext := range def.Extensions {
		e := strings.ToLower(ext)
		if prev, claimed := r.byExt[e]; claimed && prev != key {
			log.Debug(log.CatLanguage, "Extension reassigned", "ext", e, "from", prev, "to", key)
		}
		r.byExt[e] = key
	}
	r.compiled.Set(key, h)

	log.Debug(log.CatLanguage, "Registered language", "language", key, "extensions", len(def.Extensions))
	return nil
}

// Definition returns a copy of the named definition.
func (r *Registry) Definition(name string) (highlight.Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[normalize(name)]
	if !ok {
		return highlight.Definition{}, false
	}
	return def.Clone(), true
}

// NameForPath returns the name of the language claiming path's extension.
func (r *Registry) NameForPath(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.byExt[ext]
	return name, ok
}

// ForPath returns the definition claiming path's extension.
func (r *Registry) ForPath(path string) (highlight.Definition, bool) {
	name, ok := r.NameForPath(path)
	if !ok {
		return highlight.Definition{}, false
	}
	return r.Definition(name)
}

// Highlighter returns the compiled highlighter for the named language.
func (r *Registry) Highlighter(name string) (*highlight.Highlighter, error) {
	key := normalize(name)

	r.mu.RLock()
	def, ok := r.defs[key]
	opts := r.opts
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, name)
	}

	return r.compiled.GetOrLoad(key, func() (*highlight.Highlighter, error) {
		log.Debug(log.CatLanguage, "Compiling language", "language", key)
		return highlight.FromDefinition(def, opts...)
	})
}

// HighlighterForPath returns the compiled highlighter for path's extension.
func (r *Registry) HighlighterForPath(path string) (*highlight.Highlighter, error) {
	name, ok := r.NameForPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: no language for %q", ErrUnknownLanguage, filepath.Base(path))
	}
	return r.Highlighter(name)
}

// Languages returns the registered language names, sorted.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Extensions returns the extensions claimed by the named language, sorted.
func (r *Registry) Extensions(name string) []string {
	key := normalize(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	var exts []string
	for ext, owner := range r.byExt {
		if owner == key {
			exts = append(exts, ext)
		}
	}
	slices.Sort(exts)
	return exts
}

// SetOptions replaces the compile options and drops every cached highlighter.
func (r *Registry) SetOptions(opts ...highlight.Option) {
	r.mu.Lock()
	r.opts = opts
	r.mu.Unlock()
	r.Flush()
}

// Flush drops every cached highlighter. They are recompiled on next use.
func (r *Registry) Flush() {
	r.compiled.Flush()
}

func (r *Registry) options() []highlight.Option {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.opts
}
