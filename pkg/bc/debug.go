package bc

// VariableKind distinguishes a named local from the internal slots a
// for-loop's desugaring introduces.
type VariableKind byte

const (
	VariableEnd      VariableKind = 0
	VariableForIdx   VariableKind = 1
	VariableForStop  VariableKind = 2
	VariableForStep  VariableKind = 3
	VariableForGen   VariableKind = 4
	VariableForState VariableKind = 5
	VariableForCtl   VariableKind = 6
	VariableNamed    VariableKind = 7
)

// Variable is one entry of a prototype's variable-info stream. Named
// variables (kind >= VariableNamed) carry a name; for-loop internals
// don't. StartDelta/EndDelta are stored exactly as read off the wire;
// the format documents them as relative to the previous entry, but
// leaves accumulation to the caller.
type Variable struct {
	Kind       VariableKind
	Name       string
	StartDelta uint32
	EndDelta   uint32
}

// DebugInfo is a prototype's optional debug block: one source line per
// instruction, the names of its upvalues, and its variable-info stream.
// FirstLine and NumLine come from the prototype frame header; NumLine
// is what selects the per-entry width of Lines on the wire.
type DebugInfo struct {
	FirstLine    uint32
	NumLine      uint32
	Lines        []uint32
	UpvalueNames []string
	Variables    []Variable
}
