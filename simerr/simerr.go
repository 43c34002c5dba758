// Package simerr defines the error taxonomy shared by every layer of the
// simulator (spec.md §7). It exists as its own leaf package, with no
// dependency on any other package in this module, so that geom, region,
// chem, micro, meso, actor and the root driver can all return the same
// discriminable error kinds without an import cycle.
package simerr

// Kind is a closed taxonomy of fatal and non-fatal error kinds. It is a
// kind, not a type hierarchy: callers discriminate with errors.As against
// *Error and inspect Kind, rather than matching on error strings.
type Kind int

const (
	// ConfigurationMalformed: config parse (external), fatal.
	ConfigurationMalformed Kind = iota
	// ConfigurationWarning: config parse, default-fill and continue.
	ConfigurationWarning
	// GeometryInvalid: region graph builder, fatal.
	GeometryInvalid
	// ReactionIncompatible: chem-rxn compiler exclusivity violation, fatal.
	ReactionIncompatible
	// UnsupportedShapePair: geometry kernel, fatal.
	UnsupportedShapePair
	// NumericalDegenerate: geometry kernel (NaN, division by zero), fatal
	// once the guard can't route around it.
	NumericalDegenerate
	// PathValidationDepth: micro engine exceeded the bounded reflection
	// recursion depth; recovered by placing the molecule at its last valid
	// intersection point and marking it degenerate, not a crash.
	PathValidationDepth
)

func (k Kind) String() string {
	switch k {
	case ConfigurationMalformed:
		return "ConfigurationMalformed"
	case ConfigurationWarning:
		return "ConfigurationWarning"
	case GeometryInvalid:
		return "GeometryInvalid"
	case ReactionIncompatible:
		return "ReactionIncompatible"
	case UnsupportedShapePair:
		return "UnsupportedShapePair"
	case NumericalDegenerate:
		return "NumericalDegenerate"
	case PathValidationDepth:
		return "PathValidationDepth"
	default:
		return "UnknownErrorKind"
	}
}

// Fatal reports whether this kind should abort the realization driver, as
// opposed to being recoverable in place (PathValidationDepth) or merely
// collected (ConfigurationWarning).
func (k Kind) Fatal() bool {
	switch k {
	case ConfigurationWarning, PathValidationDepth:
		return false
	default:
		return true
	}
}

// Error is the concrete error value threaded through every fallible
// operation in the engine. Phase and Entity name the offending component
// and label/index per spec.md §7's "user-visible failure behavior".
type Error struct {
	Kind   Kind
	Phase  string // e.g. "build", "compile", "tick", "meso event"
	Entity string // e.g. "region[3] \"membraneA\"", "reaction[1]"
	Msg    string
	Cause  error
}

func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Phase != "" {
		s += " during " + e.Phase
	}
	if e.Entity != "" {
		s += " (" + e.Entity + ")"
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an *Error without an underlying cause.
func New(kind Kind, phase, entity, msg string) *Error {
	return &Error{Kind: kind, Phase: phase, Entity: entity, Msg: msg}
}

// Wrap builds an *Error around an underlying cause.
func Wrap(kind Kind, phase, entity string, cause error) *Error {
	return &Error{Kind: kind, Phase: phase, Entity: entity, Cause: cause}
}
