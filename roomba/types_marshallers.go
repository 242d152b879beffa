package roomba

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// This file contains (un)marshallers for the enum types exposed to
// config files and the web front-end, so they travel as their names
// instead of raw integers.
//
// this file should be go-generated, too

// ---- type Mode int

func (m Mode) MarshalJSON() ([]byte, error) {
	b, err := m.MarshalText()
	if err == nil {
		b = []byte(fmt.Sprintf("\"%s\"", string(b)))
	}
	return b, err
}

func (m *Mode) UnmarshalJSON(data []byte) error {
	dataLength := len(data)
	if data[0] != '"' || data[dataLength-1] != '"' {
		return errors.New("Mode.UnmarshalJSON: Invalid JSON provided")
	}
	return m.UnmarshalText(data[1 : dataLength-1])
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	str := string(b)
	idx := strings.Index(_Mode_name, str)
	if idx < 0 {
		i, err := strconv.Atoi(str)
		if err == nil {
			*m = Mode(i)
			return nil
		}
		return fmt.Errorf("Cannot unmarshall \"%s\" to Mode. Is it mispelled?", str)
	}

	for i, v := range _Mode_index {
		if int(v) == idx {
			*m = Mode(i)
			return nil
		}
	}
	return fmt.Errorf("unexpected error in UnmarshalText for '%s' (go generate?)", m)
}

// ---- type ChargingState int

func (ch ChargingState) MarshalJSON() ([]byte, error) {
	b, err := ch.MarshalText()
	if err == nil {
		b = []byte(fmt.Sprintf("\"%s\"", string(b)))
	}
	return b, err
}

func (ch *ChargingState) UnmarshalJSON(data []byte) error {
	dataLength := len(data)
	if data[0] != '"' || data[dataLength-1] != '"' {
		return errors.New("ChargingState.UnmarshalJSON: Invalid JSON provided")
	}
	return ch.UnmarshalText(data[1 : dataLength-1])
}

func (ch ChargingState) MarshalText() ([]byte, error) {
	return []byte(ch.String()), nil
}

func (ch *ChargingState) UnmarshalText(b []byte) error {
	str := string(b)
	idx := strings.Index(_ChargingState_name, str)
	if idx < 0 {
		i, err := strconv.Atoi(str)
		if err == nil {
			*ch = ChargingState(i)
			return nil
		}
		return fmt.Errorf("Cannot unmarshall \"%s\" to ChargingState. Is it mispelled?", str)
	}

	for i, v := range _ChargingState_index {
		if int(v) == idx {
			*ch = ChargingState(i)
			return nil
		}
	}
	return fmt.Errorf("unexpected error in UnmarshalText for '%s' (go generate?)", ch)
}

// ---- type Value

// MarshalJSON encodes a sensor value as {"id":..,"name":..,"value":..}
// with the value shaped per kind: number, bool, or flag object.
func (v Value) MarshalJSON() ([]byte, error) {
	var val string
	switch v.Kind {
	case Boolean:
		val = strconv.FormatBool(v.Bool)
	case BitFlags:
		set := make([]string, len(v.Flags.Set))
		for i, s := range v.Flags.Set {
			set[i] = fmt.Sprintf("%q", s)
		}
		val = fmt.Sprintf("{\"raw\":%d,\"set\":[%s],\"unknown\":%d}",
			v.Flags.Raw, strings.Join(set, ","), v.Flags.Unknown)
	default:
		val = strconv.Itoa(v.Int)
	}
	return []byte(fmt.Sprintf("{\"id\":%d,\"name\":%q,\"value\":%s}", v.ID, v.Name, val)), nil
}
