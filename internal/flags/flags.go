// Package flags provides feature flags read from the flags section of the config.
// Unknown and unset flags are disabled.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/hilite/internal/log"
)

const (
	// FlagIsolateClosedRegions keeps single-line rules from repainting a
	// multi-line region that opens and closes on the same line.
	// When disabled, the whole line is rescanned after the region closes.
	FlagIsolateClosedRegions = "isolate-closed-regions"
)

// Known returns the names of every flag hilite reads, sorted.
func Known() []string {
	return []string{FlagIsolateClosedRegions}
}

// Registry holds feature flag state. It is read-only after New.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a copy of the config map. A nil map disables
// every flag. Names hilite does not read are logged and kept.
func New(flags map[string]bool) *Registry {
	r := &Registry{flags: make(map[string]bool, len(flags))}
	maps.Copy(r.flags, flags)
	for _, name := range r.Unknown() {
		log.Warn(log.CatConfig, "Unknown feature flag in config", "flag", name)
	}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(r.flags), "flags", r.flags)
	return r
}

// Enabled reports whether the named flag is set to true. Nil-safe.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return false
	}
	return r.flags[name]
}

// IsolateClosedRegions reports whether FlagIsolateClosedRegions is enabled.
func (r *Registry) IsolateClosedRegions() bool {
	return r.Enabled(FlagIsolateClosedRegions)
}

// Unknown returns configured flag names that hilite does not read, sorted.
func (r *Registry) Unknown() []string {
	if r == nil {
		return nil
	}
	known := Known()
	var out []string
	for name := range r.flags {
		if !slices.Contains(known, name) {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// All returns a copy of all configured flags.
func (r *Registry) All() map[string]bool {
	if r == nil {
		return map[string]bool{}
	}
	return maps.Clone(r.flags)
}
