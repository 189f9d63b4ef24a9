package meta

import "github.com/exmachina-dev/CANopenNode/internal/od"

// Metadata holds the resolved and validated dictionary needed for code generation.
// Shared between generator orchestrator and the C generator; read-only once built.
type Metadata struct {
	Directory   *od.Directory
	Assignments *od.Assignments // feature association table from od.Resolve
	Reference   string          // inserted in every generated identifier, e.g. CO<ref>_OD_RAM
	// LenientRange accepts the legacy inclusive upper bounds (2^(8N-1) signed, 2^(8N) unsigned).
	LenientRange bool
	CreatedBy    string // fallback for FileInfo.CreatedBy
}
