package roomba

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// FlagSet is the decoded value of a bit-flag sensor: the raw mask, the
// names of the set bits in catalog order, and the mask of set bits the
// catalog has no name for. Unknown bits are kept rather than dropped so
// that newer hardware revisions don't silently lose information.
type FlagSet struct {
	Raw     uint16
	Set     []string
	Unknown uint16
}

// Has reports whether the named bit is set.
func (f FlagSet) Has(name string) bool {
	for _, n := range f.Set {
		if n == name {
			return true
		}
	}
	return false
}

func (f FlagSet) String() string {
	if f.Raw == 0 {
		return "none"
	}
	parts := append([]string(nil), f.Set...)
	if f.Unknown != 0 {
		parts = append(parts, fmt.Sprintf("unknown(%#04x)", f.Unknown))
	}
	return strings.Join(parts, "|")
}

// Value is the decoded reading of a single sensor packet. Exactly one of
// Int, Bool or Flags is meaningful, per Kind.
type Value struct {
	ID    SensorID
	Name  string
	Kind  SensorKind
	Int   int
	Bool  bool
	Flags FlagSet
}

// Snapshot is an ordered sequence of decoded sensor values. Its length
// and order match the flattened (group-expanded) request exactly, which
// is the only framing the wire format has.
type Snapshot []Value

// Get returns the first value for the given packet id.
func (s Snapshot) Get(id SensorID) (Value, bool) {
	for _, v := range s {
		if v.ID == id {
			return v, true
		}
	}
	return Value{}, false
}

// IDs lists the packet ids of the snapshot in order.
func (s Snapshot) IDs() []SensorID {
	ids := make([]SensorID, len(s))
	for i, v := range s {
		ids[i] = v.ID
	}
	return ids
}

// Expand flattens the requested ids, replacing each group with its
// members in order. OI groups are flat, but a cycle in the catalog is
// still rejected rather than assumed away.
func Expand(ids []SensorID) ([]SensorID, error) {
	flat := make([]SensorID, 0, len(ids))
	for _, id := range ids {
		if err := expandInto(id, &flat, make(map[SensorID]bool)); err != nil {
			return nil, err
		}
	}
	return flat, nil
}

func expandInto(id SensorID, out *[]SensorID, seen map[SensorID]bool) error {
	spec, ok := sensorCatalog[id]
	if !ok {
		return &UnknownSensorError{ID: id}
	}
	if !spec.IsGroup() {
		*out = append(*out, id)
		return nil
	}
	if seen[id] {
		return &GroupCycleError{ID: id}
	}
	seen[id] = true
	for _, m := range spec.Members {
		if err := expandInto(m, out, seen); err != nil {
			return err
		}
	}
	delete(seen, id)
	return nil
}

// PayloadSize returns the exact number of payload bytes the hardware
// answers for the given (unexpanded) request.
func PayloadSize(ids []SensorID) (int, error) {
	flat, err := Expand(ids)
	if err != nil {
		return 0, err
	}
	size := 0
	for _, id := range flat {
		size += sensorCatalog[id].Width
	}
	return size, nil
}

// Decode turns a raw sensor payload into a Snapshot for the requested
// ids. The buffer must match the expanded width exactly: the wire format
// carries no length prefix, so a mismatch is framing corruption, not a
// short read to retry.
func Decode(ids []SensorID, buf []byte) (Snapshot, error) {
	flat, err := Expand(ids)
	if err != nil {
		return nil, err
	}
	want := 0
	for _, id := range flat {
		want += sensorCatalog[id].Width
	}
	if want != len(buf) {
		return nil, &BufferLengthError{Want: want, Got: len(buf)}
	}

	snap := make(Snapshot, 0, len(flat))
	pos := 0
	for _, id := range flat {
		spec := sensorCatalog[id]
		v, err := decodeValue(spec, buf[pos:pos+spec.Width])
		if err != nil {
			return nil, err
		}
		pos += spec.Width
		snap = append(snap, v)
	}
	return snap, nil
}

func decodeValue(spec *SensorSpec, raw []byte) (Value, error) {
	v := Value{ID: spec.ID, Name: spec.Name, Kind: spec.Kind}
	var u uint16
	if spec.Width == 2 {
		u = binary.BigEndian.Uint16(raw)
	} else {
		u = uint16(raw[0])
	}
	switch spec.Kind {
	case Unsigned:
		v.Int = int(u)
	case Signed:
		if spec.Width == 2 {
			v.Int = int(int16(u))
		} else {
			v.Int = int(int8(raw[0]))
		}
	case Boolean:
		switch raw[0] {
		case 0:
			v.Bool = false
		case 1:
			v.Bool = true
		default:
			return v, &InvalidBooleanError{ID: spec.ID, Raw: raw[0]}
		}
	case BitFlags:
		v.Flags = decodeFlags(spec, u)
	}
	return v, nil
}

func decodeFlags(spec *SensorSpec, raw uint16) FlagSet {
	f := FlagSet{Raw: raw}
	for i := uint(0); i < uint(spec.Width*8); i++ {
		if raw&(1<<i) == 0 {
			continue
		}
		if int(i) < len(spec.Bits) && spec.Bits[i] != "" {
			f.Set = append(f.Set, spec.Bits[i])
		} else {
			f.Unknown |= 1 << i
		}
	}
	return f
}
