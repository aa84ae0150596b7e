package bc

import "github.com/pkg/errors"

// readParts reads two ULEB32 halves, high word first, and combines
// them as (hi<<32)|lo, the shared shape behind Signed, Unsigned, and
// both halves of a Complex pair.
func (d *decoder) readParts() (uint64, error) {
	hi, err := d.buf.ULEB32()
	if err != nil {
		return 0, errors.Wrap(err, "bc: reading high word")
	}
	lo, err := d.buf.ULEB32()
	if err != nil {
		return 0, errors.Wrap(err, "bc: reading low word")
	}
	return (uint64(hi) << 32) | uint64(lo), nil
}

func (d *decoder) readComplex(protoIndex int) (Complex, error) {
	tag, err := d.buf.ULEB32()
	if err != nil {
		return nil, errors.Wrap(err, "bc: reading complex constant tag")
	}

	switch {
	case tag == 0:
		return ComplexPrototype{Index: protoIndex - 1}, nil
	case tag == 1:
		nArray, err := d.buf.ULEB32()
		if err != nil {
			return nil, errors.Wrap(err, "bc: reading table array length")
		}
		nHash, err := d.buf.ULEB32()
		if err != nil {
			return nil, errors.Wrap(err, "bc: reading table hash length")
		}
		array := make([]TableItem, nArray)
		for i := range array {
			item, err := d.readTableItem()
			if err != nil {
				return nil, errors.Wrapf(err, "bc: reading table array item %d", i)
			}
			array[i] = item
		}
		hash := make([]TableItemPair, nHash)
		for i := range hash {
			key, err := d.readTableItem()
			if err != nil {
				return nil, errors.Wrapf(err, "bc: reading table hash key %d", i)
			}
			value, err := d.readTableItem()
			if err != nil {
				return nil, errors.Wrapf(err, "bc: reading table hash value %d", i)
			}
			hash[i] = TableItemPair{Key: key, Value: value}
		}
		return ComplexTable{Array: array, Hash: hash}, nil
	case tag == 2:
		v, err := d.readParts()
		if err != nil {
			return nil, errors.Wrap(err, "bc: reading signed constant")
		}
		return ComplexSigned{Value: int64(v)}, nil
	case tag == 3:
		v, err := d.readParts()
		if err != nil {
			return nil, errors.Wrap(err, "bc: reading unsigned constant")
		}
		return ComplexUnsigned{Value: v}, nil
	case tag == 4:
		real, err := d.readParts()
		if err != nil {
			return nil, errors.Wrap(err, "bc: reading complex real part")
		}
		imag, err := d.readParts()
		if err != nil {
			return nil, errors.Wrap(err, "bc: reading complex imaginary part")
		}
		return ComplexPair{Real: real, Imag: imag}, nil
	default: // tag >= 5
		n := int(tag - 5)
		raw, err := d.buf.Raw(n)
		if err != nil {
			return nil, errors.Wrap(err, "bc: reading string constant")
		}
		value := make([]byte, n)
		copy(value, raw)
		return ComplexString{Value: value}, nil
	}
}

func (d *decoder) readTableItem() (TableItem, error) {
	tag, err := d.buf.ULEB32()
	if err != nil {
		return nil, errors.Wrap(err, "bc: reading table item tag")
	}

	switch {
	case tag == 0:
		return ItemNil{}, nil
	case tag == 1:
		return ItemFalse{}, nil
	case tag == 2:
		return ItemTrue{}, nil
	case tag == 3:
		v, err := d.buf.ULEB32()
		if err != nil {
			return nil, errors.Wrap(err, "bc: reading table item integer")
		}
		return ItemInteger{Value: int32(v)}, nil
	case tag == 4:
		// The halves are read low-then-high here, the opposite order
		// from readParts; this is the wire format, not a typo.
		lo, err := d.buf.ULEB32()
		if err != nil {
			return nil, errors.Wrap(err, "bc: reading table item numeric low word")
		}
		hi, err := d.buf.ULEB32()
		if err != nil {
			return nil, errors.Wrap(err, "bc: reading table item numeric high word")
		}
		return ItemNumeric{Bits: (uint64(hi) << 32) | uint64(lo)}, nil
	default: // tag >= 5
		n := int(tag - 5)
		raw, err := d.buf.Raw(n)
		if err != nil {
			return nil, errors.Wrap(err, "bc: reading table item string")
		}
		value := make([]byte, n)
		copy(value, raw)
		return ItemString{Value: value}, nil
	}
}

func (d *decoder) readNumeric() (Numeric, error) {
	isNumber, lo, err := d.buf.Uleb33()
	if err != nil {
		return Numeric{}, errors.Wrap(err, "bc: reading numeric constant tag")
	}
	if !isNumber {
		return Numeric{Bits: uint64(lo)}, nil
	}
	hi, err := d.buf.ULEB32()
	if err != nil {
		return Numeric{}, errors.Wrap(err, "bc: reading numeric constant high word")
	}
	return Numeric{Bits: (uint64(hi) << 32) | uint64(lo)}, nil
}
