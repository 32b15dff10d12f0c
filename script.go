package firscript

import ps "github.com/firscript-run/firscript/internal/pyscript"

// ScriptKind classifies a Script as one of three shapes the validator
// recognizes. See Parse for the exact predicate.
type ScriptKind int

const (
	KindUnknown ScriptKind = iota
	KindStrategy
	KindIndicator
	KindLibrary
)

func (k ScriptKind) String() string {
	switch k {
	case KindStrategy:
		return "strategy"
	case KindIndicator:
		return "indicator"
	case KindLibrary:
		return "library"
	default:
		return "unknown"
	}
}

// ScriptMetadata is everything the validator can derive about a Script
// without running it.
type ScriptMetadata struct {
	ID      string
	Name    string
	Kind    ScriptKind
	Exports map[string]bool
	Imports map[string]string // alias -> imported script name
}

// Script is an immutable pair of source text and derived metadata, produced
// only by a successful Parse.
type Script struct {
	Source   string
	Metadata ScriptMetadata

	program *ps.Program
}

// ID returns the script's registration identifier.
func (s *Script) ID() string { return s.Metadata.ID }

// Kind returns the script's classified kind.
func (s *Script) Kind() ScriptKind { return s.Metadata.Kind }
