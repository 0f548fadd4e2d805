// Package whisper is the client-resident state layer for a personal
// note-journaling tool.
//
// It owns four stores: the signed-in identity, the visual theme selection,
// the note collection and the notebooks grouping them. Each store holds the
// canonical in-memory state, persists every mutation to durable local
// storage before reporting success, and publishes change events so a
// presentation layer can re-render from fresh snapshots.
//
// The identity store reconciles against a remote auth service that may
// simply not exist: network failures fall back to a locally synthesized
// session instead of surfacing errors. That degraded mode is a deliberate
// contract, not a bug to fix.
package whisper
