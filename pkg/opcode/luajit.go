package opcode

func ad(name string) Variant    { return Variant{Name: name, Fields: []Field{FieldA, FieldD}, Added: 1} }
func abc(name string) Variant   { return Variant{Name: name, Fields: []Field{FieldA, FieldB, FieldC}, Added: 1} }
func donly(name string) Variant { return Variant{Name: name, Fields: []Field{FieldD}, Added: 1} }
func aonly(name string) Variant { return Variant{Name: name, Fields: []Field{FieldA}, Added: 1} }

func ad2(name string) Variant  { return Variant{Name: name, Fields: []Field{FieldA, FieldD}, Added: 2} }
func abc2(name string) Variant { return Variant{Name: name, Fields: []Field{FieldA, FieldB, FieldC}, Added: 2} }

// LuaJIT is the canonical LuaJIT 2.x opcode table, in the numbering
// order LuaJIT itself declares them. Version 1 is the 2.0 bytecode and
// version 2 the 2.1 bytecode; the four opcodes 2.1 introduced (ISTYPE,
// ISNUM, TGETR, TSETR) carry Added: 2, so a version-1 dump decodes
// against the 2.0 numbering, where MOV sits at opcode 16 instead
// of 18.
var LuaJIT = Table{
	ad("ISLT"), ad("ISGE"), ad("ISLE"), ad("ISGT"),
	ad("ISEQV"), ad("ISNEV"), ad("ISEQS"), ad("ISNES"),
	ad("ISEQN"), ad("ISNEN"), ad("ISEQP"), ad("ISNEP"),
	ad("ISTC"), ad("ISFC"), donly("IST"), donly("ISF"),
	ad2("ISTYPE"), ad2("ISNUM"),
	ad("MOV"), ad("NOT"), ad("UNM"), ad("LEN"),
	abc("ADDVN"), abc("SUBVN"), abc("MULVN"), abc("DIVVN"), abc("MODVN"),
	abc("ADDNV"), abc("SUBNV"), abc("MULNV"), abc("DIVNV"), abc("MODNV"),
	abc("ADDVV"), abc("SUBVV"), abc("MULVV"), abc("DIVVV"), abc("MODVV"),
	abc("POW"), abc("CAT"),
	ad("KSTR"), ad("KCDATA"), ad("KSHORT"), ad("KNUM"), ad("KPRI"), ad("KNIL"),
	ad("UGET"), ad("USETV"), ad("USETS"), ad("USETN"), ad("USETP"), ad("UCLO"),
	ad("FNEW"), ad("TNEW"), ad("TDUP"), ad("GGET"), ad("GSET"),
	abc("TGETV"), abc("TGETS"), abc("TGETB"), abc2("TGETR"),
	abc("TSETV"), abc("TSETS"), abc("TSETB"), abc2("TSETR"), ad("TSETM"),
	abc("CALLM"), abc("CALL"), ad("CALLMT"), ad("CALLT"),
	abc("ITERC"), abc("ITERN"), abc("VARG"), ad("ISNEXT"),
	ad("RETM"), ad("RET"), ad("RET0"), ad("RET1"),
	ad("FORI"), ad("JFORI"), ad("FORL"), ad("IFORL"), ad("JFORL"),
	ad("ITERL"), ad("IITERL"), ad("JITERL"),
	ad("LOOP"), ad("ILOOP"), ad("JLOOP"), ad("JMP"),
	aonly("FUNCF"), aonly("IFUNCF"), ad("JFUNCF"),
	aonly("FUNCV"), aonly("IFUNCV"), ad("JFUNCV"),
	aonly("FUNCC"), aonly("FUNCCW"),
}

// Default is the compiled decoder for the canonical LuaJIT table,
// built once at package init so callers decode without paying the
// table compilation per dump.
var Default = MustBuild(LuaJIT)
