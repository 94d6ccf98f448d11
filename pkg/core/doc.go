// Package core defines the shared language of sqliteweb.
//
// This package contains:
//   - Domain entities (Column, Structure, ResultSet)
//   - The Engine interface every SQL backend implements
//   - Typed errors surfaced to the UI and CLI
//
// pkg/core imports only the standard library.
// All other packages depend on core, not the reverse.
package core
