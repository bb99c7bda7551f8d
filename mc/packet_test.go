package mc_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/realDragonium/mcquery/mc"
)

func TestPacket_Marshal(t *testing.T) {
	tt := []struct {
		packet   mc.Packet
		expected []byte
	}{
		{
			packet: mc.Packet{
				ID:   0x00,
				Data: []byte{0x00, 0xf2},
			},
			expected: []byte{0x03, 0x00, 0x00, 0xf2},
		},
		{
			packet: mc.Packet{
				ID:   0x0f,
				Data: []byte{0x00, 0xf2, 0x03, 0x50},
			},
			expected: []byte{0x05, 0x0f, 0x00, 0xf2, 0x03, 0x50},
		},
		{
			packet:   mc.ServerBoundRequest{}.Marshal(),
			expected: []byte{0x01, 0x00},
		},
	}

	for _, tc := range tt {
		actual := tc.packet.Marshal()
		if !bytes.Equal(actual, tc.expected) {
			t.Errorf("got: %v; want: %v", actual, tc.expected)
		}
	}
}

func TestPacket_Scan(t *testing.T) {
	packet := mc.Packet{
		ID:   0x00,
		Data: []byte{0x02, 0x68, 0x69, 0x01, 0x00},
	}

	var str mc.String
	var short mc.UnsignedShort

	if err := packet.Scan(&str, &short); err != nil {
		t.Fatal(err)
	}

	if str != "hi" {
		t.Errorf("got: %q; want: %q", str, "hi")
	}
	if short != 256 {
		t.Errorf("got: %d; want: %d", short, 256)
	}
}

func TestMarshalPacket(t *testing.T) {
	packetId := byte(0x00)
	field := mc.VarInt(300)
	packetData := []byte{0xac, 0x02}

	packet := mc.MarshalPacket(packetId, field)

	if packet.ID != packetId {
		t.Errorf("packet id: got: %v; want: %v", packet.ID, packetId)
	}

	if !bytes.Equal(packet.Data, packetData) {
		t.Errorf("got: %v; want: %v", packet.Data, packetData)
	}
}

func TestReadPacket(t *testing.T) {
	tt := []struct {
		data   []byte
		packet mc.Packet
	}{
		{
			data:   []byte{0x03, 0x00, 0x00, 0xf2, 0x05, 0x0f, 0x00, 0xf2, 0x03, 0x50},
			packet: mc.Packet{ID: 0x00, Data: []byte{0x00, 0xf2}},
		},
		{
			data:   []byte{0x05, 0x0f, 0x00, 0xf2, 0x03, 0x50, 0x30, 0x01, 0xef, 0xaa},
			packet: mc.Packet{ID: 0x0f, Data: []byte{0x00, 0xf2, 0x03, 0x50}},
		},
	}

	for _, tc := range tt {
		pk, err := mc.ReadPacket(bytes.NewReader(tc.data))
		if err != nil {
			t.Error(err)
		}

		if pk.ID != tc.packet.ID {
			t.Errorf("packet id: got: %v; want: %v", pk.ID, tc.packet.ID)
		}
		if !bytes.Equal(pk.Data, tc.packet.Data) {
			t.Errorf("got: %v; want: %v", pk.Data, tc.packet.Data)
		}
	}
}

func TestReadPacket_Errors(t *testing.T) {
	tt := []struct {
		name string
		data []byte
	}{
		{name: "empty length", data: []byte{0x00}},
		{name: "truncated", data: []byte{0x05, 0x00, 0x01}},
		{name: "no data", data: []byte{}},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := mc.ReadPacket(bytes.NewReader(tc.data)); err == nil {
				t.Error("expected an error")
			}
		})
	}

	t.Run("too big", func(t *testing.T) {
		data := mc.VarInt(mc.MaxPacketSize + 1).Encode()
		_, err := mc.ReadPacket(bytes.NewReader(data))
		if !errors.Is(err, mc.ErrPacketTooBig) {
			t.Errorf("expected %v but got %v", mc.ErrPacketTooBig, err)
		}
	})
}
