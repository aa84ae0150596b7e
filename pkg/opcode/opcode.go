// Package opcode builds a version-aware instruction decoder from a
// declarative table of named bytecode variants. The table is compiled
// once, at package init for the canonical LuaJIT table, into a dense
// per-version-range dispatch structure; decoding a word is then a
// scan of the few version ranges for the one covering the version,
// followed by a slice index on the opcode byte.
package opcode

import (
	"sort"

	"github.com/pkg/errors"
)

// Field names one of the four bit positions a variant's operands can
// occupy within a 32-bit instruction word.
type Field int

const (
	FieldA Field = iota
	FieldB
	FieldC
	FieldD
)

// Variant is one named instruction shape: its operand field layout and
// the half-open version range over which it is live.
//
// Added defaults to 1 if left zero; Removed of 0 means "never removed".
type Variant struct {
	Name    string
	Fields  []Field
	Added   int
	Removed int
}

// Table is the declarative input to Build: an ordered list of variants
// whose declaration order fixes opcode numbering within any version
// where all of them are simultaneously live.
type Table []Variant

// Instruction is a decoded 32-bit word paired with the variant name
// selected for it. All four accessor methods are always well-defined:
// B/C and D alias the same two high bytes, so it costs nothing to
// expose both views regardless of which fields the matched variant
// actually declares.
type Instruction struct {
	Name string
	Word uint32
}

func (i Instruction) Op() uint8 { return uint8(i.Word) }
func (i Instruction) A() uint8  { return uint8(i.Word >> 8) }
func (i Instruction) B() uint8  { return uint8(i.Word >> 16) }
func (i Instruction) C() uint8  { return uint8(i.Word >> 24) }
func (i Instruction) D() uint16 { return uint16(i.Word >> 16) }

var (
	// ErrMalformedInstructionLayout is returned at Build time when a
	// variant declares both a D field and a B or C field.
	ErrMalformedInstructionLayout = errors.New("opcode: variant mixes D with B/C")
	// ErrUnsupportedVersion is returned when no version range covers
	// the requested bytecode version.
	ErrUnsupportedVersion = errors.New("opcode: unsupported bytecode version")
	// ErrUnknownOpcode is returned when the opcode byte exceeds the
	// live-variant table for the selected version.
	ErrUnknownOpcode = errors.New("opcode: unknown opcode for version")
)

type versionRange struct {
	start    int
	end      int // 0 means unbounded
	variants []Variant
}

func (r versionRange) covers(version int) bool {
	if version < r.start {
		return false
	}
	if r.end != 0 && version >= r.end {
		return false
	}
	return true
}

// Generated is a compiled decoder for one opcode table: the set of
// version ranges and, per range, the dense opcode-indexed variant list.
type Generated struct {
	ranges []versionRange
}

// MustBuild is Build for tables known to be statically valid, like the
// package's own LuaJIT table. It panics on a malformed table, which
// for package-level tables means at init, before any decoding runs.
func MustBuild(table Table) *Generated {
	g, err := Build(table)
	if err != nil {
		panic(err)
	}
	return g
}

// Build validates table and compiles it into a Generated decoder.
func Build(table Table) (*Generated, error) {
	for _, v := range table {
		var hasD, hasBC bool
		for _, f := range v.Fields {
			switch f {
			case FieldD:
				hasD = true
			case FieldB, FieldC:
				hasBC = true
			}
		}
		if hasD && hasBC {
			return nil, errors.Wrapf(ErrMalformedInstructionLayout, "variant %q", v.Name)
		}
	}

	points := collectBreakpoints(table)
	if len(points) == 0 {
		return &Generated{}, nil
	}

	segments := make([]versionRange, 0, len(points))
	for i, start := range points {
		end := 0
		if i+1 < len(points) {
			end = points[i+1]
		}
		segments = append(segments, versionRange{start: start, end: end, variants: liveAt(table, start)})
	}

	coalesced := segments[:1]
	for _, seg := range segments[1:] {
		last := &coalesced[len(coalesced)-1]
		if sameVariants(last.variants, seg.variants) {
			last.end = seg.end
			continue
		}
		coalesced = append(coalesced, seg)
	}

	sort.Slice(coalesced, func(i, j int) bool { return coalesced[i].start > coalesced[j].start })

	return &Generated{ranges: coalesced}, nil
}

func collectBreakpoints(table Table) []int {
	set := map[int]struct{}{}
	for _, v := range table {
		added := v.Added
		if added == 0 {
			added = 1
		}
		set[added] = struct{}{}
		if v.Removed != 0 {
			set[v.Removed] = struct{}{}
		}
	}
	points := make([]int, 0, len(set))
	for p := range set {
		points = append(points, p)
	}
	sort.Ints(points)
	return points
}

func liveAt(table Table, version int) []Variant {
	var out []Variant
	for _, v := range table {
		added := v.Added
		if added == 0 {
			added = 1
		}
		if added <= version && (v.Removed == 0 || version < v.Removed) {
			out = append(out, v)
		}
	}
	return out
}

func sameVariants(a, b []Variant) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name {
			return false
		}
	}
	return true
}

func (g *Generated) rangeFor(version int) (versionRange, bool) {
	for _, r := range g.ranges {
		if r.covers(version) {
			return r, true
		}
	}
	return versionRange{}, false
}

// LiveVariants returns the opcode-ordered variant names live at
// version, for inspecting or testing the generated numbering directly.
func (g *Generated) LiveVariants(version int) ([]string, error) {
	r, ok := g.rangeFor(version)
	if !ok {
		return nil, ErrUnsupportedVersion
	}
	names := make([]string, len(r.variants))
	for i, v := range r.variants {
		names[i] = v.Name
	}
	return names, nil
}

// Decode selects the variant live at opcode (word & 0xFF) for version
// and returns the decoded Instruction.
func (g *Generated) Decode(word uint32, version int) (Instruction, error) {
	r, ok := g.rangeFor(version)
	if !ok {
		return Instruction{}, ErrUnsupportedVersion
	}
	op := uint8(word)
	if int(op) >= len(r.variants) {
		return Instruction{}, errors.Wrapf(ErrUnknownOpcode, "opcode %d (version %d)", op, version)
	}
	return Instruction{Name: r.variants[op].Name, Word: word}, nil
}
