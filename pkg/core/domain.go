// Package core holds the domain entities shared by the whisper stores.
package core

import "time"

// User is the signed-in identity. It is owned exclusively by the identity
// store; other stores reference it by ID only.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Theme is one entry of the built-in catalog. Only the selection and the
// DarkMode flag of the active theme are mutable at runtime; the catalog
// itself is fixed.
type Theme struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	Image              string `json:"image"`
	PrimaryColor       string `json:"primaryColor"`
	SecondaryColor     string `json:"secondaryColor"`
	AccentColor        string `json:"accentColor"`
	BackgroundGradient string `json:"backgroundGradient"`
	TextColor          string `json:"textColor"`
	CardBackground     string `json:"cardBackground"`
	CardTextColor      string `json:"cardTextColor"`
	AccentTextColor    string `json:"accentTextColor"`
	DarkMode           bool   `json:"darkMode,omitempty"`
}

// Note is a journal entry. NotebookID, when set, must reference an existing
// Notebook; the stores enforce this since nothing else will.
type Note struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	NotebookID string    `json:"notebookId,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Notebook is a named grouping of notes. Duplicate names are allowed.
type Notebook struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Provenance records which branch of the network-then-fallback contract
// produced the current identity. Callers of the store cannot tell the two
// apart from the returned User alone; the tag keeps the branch observable.
type Provenance string

const (
	// ProvenanceServer marks an identity returned by the backend.
	ProvenanceServer Provenance = "server"
	// ProvenanceLocal marks a locally synthesized fallback identity.
	ProvenanceLocal Provenance = "local"
	// ProvenanceRestored marks a session read back from durable storage at
	// startup; whether it was originally server or local is not recorded.
	ProvenanceRestored Provenance = "restored"
	// ProvenanceNone means no identity is present.
	ProvenanceNone Provenance = ""
)

// ProfileUpdate is a field-level partial update of the User. Nil fields are
// left untouched by the merge.
type ProfileUpdate struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

// NotePatch is a field-level partial update of a Note.
type NotePatch struct {
	Title      *string   `json:"title,omitempty"`
	Body       *string   `json:"body,omitempty"`
	NotebookID *string   `json:"notebookId,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
}

// CascadePolicy decides what happens to notes referencing a notebook that is
// being deleted. There is no default; callers choose explicitly.
type CascadePolicy int

const (
	// CascadeDetach clears NotebookID on dependent notes.
	CascadeDetach CascadePolicy = iota
	// CascadeDelete removes dependent notes together with the notebook.
	CascadeDelete
)

// EventType represents the kind of change a store observed.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event is published on a store's subscription channel after its snapshot
// changed. Consumers re-read the snapshot; the event itself carries only the
// entity ID.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
}
