// README: Place candidate types shared by the matcher and the dialogue engine.
package places

import "yahu/internal/types"

// Candidate is an unresolved, ranked guess at a place matching a user query.
// Transient: it lives only for the turn/state that produced it.
type Candidate struct {
	// DisplayText is the human-readable description (name + locality).
	DisplayText string `json:"display_text"`
	// Ref is an opaque reference: either a provider place id or a
	// gazetteer key prefixed with "local:".
	Ref string `json:"ref"`
}

// ResolvedPlace is the outcome of resolving one Candidate.
type ResolvedPlace struct {
	Address  string      `json:"address"`
	Location types.Point `json:"location"`
}
