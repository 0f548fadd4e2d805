// Package surface isolates the document-level side effects of theme
// selection behind a single interface, so the theme store stays
// deterministic and testable without a rendering host.
package surface

import (
	"strings"
	"sync"
)

// Style variable names published for the rendering surface.
const (
	VarPrimary   = "--theme-primary"
	VarSecondary = "--theme-secondary"
	VarAccent    = "--theme-accent"
)

// DarkClass is the root-level marker for dark mode.
const DarkClass = "dark"

// MarkerPrefix prefixes the active-theme identifier marker on the body.
// Exactly one marker is present at a time.
const MarkerPrefix = "theme-"

// Surface is the rendering surface the theme store publishes into. All
// methods must be idempotent: re-applying the same theme yields the same
// published state.
type Surface interface {
	// SetVariable publishes a named style variable on the document root.
	SetVariable(name, value string)

	// SetDark toggles the global dark-mode flag on the document root.
	SetDark(dark bool)

	// SetThemeMarker replaces any previous theme identifier marker on the
	// document body with MarkerPrefix+id.
	SetThemeMarker(id string)
}

// Document is an in-memory Surface. It models the two class lists and the
// style variables a DOM-backed implementation would mutate, and is what the
// tests and the CLI inspect.
type Document struct {
	mu          sync.RWMutex
	variables   map[string]string
	rootClasses map[string]struct{}
	bodyClasses map[string]struct{}
}

// NewDocument creates an empty document surface.
func NewDocument() *Document {
	return &Document{
		variables:   make(map[string]string),
		rootClasses: make(map[string]struct{}),
		bodyClasses: make(map[string]struct{}),
	}
}

// SetVariable publishes a style variable.
func (d *Document) SetVariable(name, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.variables[name] = value
}

// SetDark adds or removes the dark marker on the root.
func (d *Document) SetDark(dark bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if dark {
		d.rootClasses[DarkClass] = struct{}{}
	} else {
		delete(d.rootClasses, DarkClass)
	}
}

// SetThemeMarker drops every existing theme-* marker from the body and adds
// the one for id, so markers never accumulate across selections.
func (d *Document) SetThemeMarker(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for class := range d.bodyClasses {
		if strings.HasPrefix(class, MarkerPrefix) {
			delete(d.bodyClasses, class)
		}
	}
	d.bodyClasses[MarkerPrefix+id] = struct{}{}
}

// Variable returns the published value for a style variable.
func (d *Document) Variable(name string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.variables[name]
}

// IsDark reports whether the root carries the dark marker.
func (d *Document) IsDark() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.rootClasses[DarkClass]
	return ok
}

// ThemeMarkers returns every theme-* marker currently on the body. A healthy
// document has exactly one.
func (d *Document) ThemeMarkers() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var markers []string
	for class := range d.bodyClasses {
		if strings.HasPrefix(class, MarkerPrefix) {
			markers = append(markers, class)
		}
	}
	return markers
}

// Noop is a Surface that publishes nowhere. Used when the embedding
// application has no rendering host (e.g. headless CLI commands).
type Noop struct{}

func (Noop) SetVariable(name, value string) {}
func (Noop) SetDark(dark bool)              {}
func (Noop) SetThemeMarker(id string)       {}
