package roomba

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
)

func TestTypesMarshallers(t *testing.T) {
	var (
		m        Mode
		ch       ChargingState
		expected string
		b        []byte
		err      error
	)

	m = Mode(ModeSafe)
	expected = fmt.Sprintf("\"%s\"", m)
	b, err = json.Marshal(m)
	if err != nil {
		t.Error(err)
	} else {
		expect(t, "Mode_MarshallJSON", string(b), string(expected))
	}

	ch = ChargingState(TrickleCharging)
	expected = fmt.Sprintf("\"%s\"", ch)
	b, err = json.Marshal(ch)
	if err != nil {
		t.Error(err)
	} else {
		expect(t, "ChargingState_MarshallJSON", string(b), string(expected))
	}
}

func TestUnmarshallers(t *testing.T) {
	var (
		m   Mode
		ch  ChargingState
		b   *bytes.Buffer
		dec *json.Decoder
		err error
	)

	b = new(bytes.Buffer)
	b.WriteString("\"Passive\"")
	dec = json.NewDecoder(b)
	err = dec.Decode(&m)
	if err != nil {
		t.Error(err)
	} else {
		expect(t, "Mode_UnmarshallJSON", m.String(), ModePassive.String())
	}

	b = new(bytes.Buffer)
	b.WriteString("\"ChargingFault\"")
	dec = json.NewDecoder(b)
	err = dec.Decode(&ch)
	if err != nil {
		t.Error(err)
	} else {
		expect(t, "ChargingState_UnmarshallJSON", ch.String(), ChargingFault.String())
	}
}

func TestValueMarshalJSON(t *testing.T) {
	snap, err := Decode([]SensorID{PacketVoltage, PacketVirtualWall, PacketButtons},
		[]byte{0x3F, 0x6A, 0x01, 0x05})
	if err != nil {
		t.Fatal(err)
	}

	cases := []string{
		`{"id":22,"name":"voltage","value":16234}`,
		`{"id":13,"name":"virtual-wall","value":true}`,
		`{"id":18,"name":"buttons","value":{"raw":5,"set":["clean","dock"],"unknown":0}}`,
	}
	for i, want := range cases {
		b, err := json.Marshal(snap[i])
		if err != nil {
			t.Fatal(err)
		}
		expect(t, "Value_MarshallJSON", string(b), want)
	}
}
