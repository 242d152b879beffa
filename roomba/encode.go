package roomba

import "encoding/binary"

// Encode serializes a command by name into the exact byte sequence the
// hardware expects: opcode first, then each argument per its ParamSpec,
// big-endian, two's-complement when signed. Encoding is pure: it never
// touches the connection or the mode tracker, so an encode error means
// no bytes were produced, let alone written.
func Encode(name string, args ...int) ([]byte, error) {
	spec, ok := commands[name]
	if !ok {
		return nil, &UnknownCommandError{Name: name}
	}
	return encodeSpec(spec, args)
}

func encodeSpec(spec *CommandSpec, args []int) ([]byte, error) {
	if spec.Tail == nil {
		if len(args) != len(spec.Params) {
			return nil, &ArityError{Name: spec.Name, Want: len(spec.Params), Got: len(args)}
		}
	} else if len(args) < len(spec.Params) {
		return nil, &ArityError{Name: spec.Name, Want: len(spec.Params), Got: len(args)}
	}

	buf := make([]byte, 0, 1+2*len(args))
	buf = append(buf, byte(spec.Op))
	for i, v := range args {
		var p ParamSpec
		if i < len(spec.Params) {
			p = spec.Params[i]
		} else {
			p = *spec.Tail
		}
		if v < p.Min || v > p.Max {
			return nil, &ArgumentRangeError{Name: spec.Name, Index: i, Value: v, Min: p.Min, Max: p.Max}
		}
		switch p.Width {
		case 1:
			buf = append(buf, byte(v))
		case 2:
			var w [2]byte
			binary.BigEndian.PutUint16(w[:], uint16(v))
			buf = append(buf, w[0], w[1])
		}
	}
	return buf, nil
}

// bitflags packs a sequence of booleans into an integer, first argument
// in the least significant bit.
func bitflags(args ...bool) int {
	cur, val := 1, 0
	for _, b := range args {
		if b {
			val |= cur
		}
		cur <<= 1
	}
	return val
}
