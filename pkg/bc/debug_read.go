package bc

import "github.com/pkg/errors"

// readDebugBlock reads the per-instruction line table, the upvalue
// name list, and the variable-info stream. Per-line entry width is
// selected once from numline, then every entry is widened to uint32
// and stored. The line table is fully populated, not left empty.
func (d *decoder) readDebugBlock(sizeinsn, numline, sizeuv int) (*DebugInfo, error) {
	lines := make([]uint32, sizeinsn)
	for i := range lines {
		var v uint32
		var err error
		switch {
		case numline < 256:
			var b byte
			b, err = d.buf.Byte()
			v = uint32(b)
		case numline < 65536:
			var u uint16
			u, err = d.buf.Uint16()
			v = uint32(u)
		default:
			v, err = d.buf.Uint32()
		}
		if err != nil {
			return nil, errors.Wrapf(err, "bc: reading line entry %d", i)
		}
		lines[i] = v
	}

	upvalueNames := make([]string, sizeuv)
	for i := range upvalueNames {
		name, err := d.buf.CString()
		if err != nil {
			return nil, errors.Wrapf(err, "bc: reading upvalue name %d", i)
		}
		upvalueNames[i] = name
	}

	var variables []Variable
	for {
		tag, err := d.buf.Byte()
		if err != nil {
			return nil, errors.Wrap(err, "bc: reading variable-info tag")
		}
		if tag == byte(VariableEnd) {
			break
		}

		var name string
		if tag >= byte(VariableNamed) {
			rest, err := d.buf.CString()
			if err != nil {
				return nil, errors.Wrap(err, "bc: reading variable name")
			}
			name = string(tag) + rest
		}

		start, err := d.buf.ULEB32()
		if err != nil {
			return nil, errors.Wrap(err, "bc: reading variable scope start")
		}
		end, err := d.buf.ULEB32()
		if err != nil {
			return nil, errors.Wrap(err, "bc: reading variable scope end")
		}

		kind := VariableKind(tag)
		if tag >= byte(VariableNamed) {
			kind = VariableNamed
		}
		variables = append(variables, Variable{
			Kind:       kind,
			Name:       name,
			StartDelta: start,
			EndDelta:   end,
		})
	}

	return &DebugInfo{Lines: lines, UpvalueNames: upvalueNames, Variables: variables}, nil
}
