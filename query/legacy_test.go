package query_test

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/realDragonium/mcquery/query"
)

func TestPingLegacy(t *testing.T) {
	tt := []struct {
		name     string
		kick     string
		version  string
		protocol int
		motd     string
		online   int
		max      int
	}{
		{
			name:     "1.4 layout",
			kick:     "§1\x0047\x001.4.2\x00A Minecraft Server\x003\x0020",
			version:  "1.4.2",
			protocol: 47,
			motd:     "A Minecraft Server",
			online:   3,
			max:      20,
		},
		{
			name:     "1.4 layout with garbage counts",
			kick:     "§1\x0051\x001.4.7\x00Lobby\x00many\x0050 slots",
			version:  "1.4.7",
			protocol: 51,
			motd:     "Lobby",
			online:   0,
			max:      50,
		},
		{
			name:     "beta layout",
			kick:     "Hello§3§20",
			version:  "1.3",
			protocol: 39,
			motd:     "Hell",
			online:   3,
			max:      20,
		},
		{
			name:     "beta layout motd only",
			kick:     "Survival!",
			version:  "1.3",
			protocol: 39,
			motd:     "Survival",
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			dialer := newPipeDialer(legacyServer(legacyKick(tc.kick)))

			raw, err := query.PingLegacy(context.Background(), dialer, testTarget())
			if err != nil {
				t.Fatalf("didnt expect an error but got: %v", err)
			}

			result := query.ResultFromRaw(raw)
			if result.Version() != tc.version {
				t.Errorf("expected version %q but got %q", tc.version, result.Version())
			}
			if result.ProtocolVersion() != tc.protocol {
				t.Errorf("expected protocol %d but got %d", tc.protocol, result.ProtocolVersion())
			}
			if result.MessageOfTheDay() != tc.motd {
				t.Errorf("expected motd %q but got %q", tc.motd, result.MessageOfTheDay())
			}
			if result.OnlinePlayers() != tc.online {
				t.Errorf("expected %d online players but got %d", tc.online, result.OnlinePlayers())
			}
			if result.MaxPlayers() != tc.max {
				t.Errorf("expected %d max players but got %d", tc.max, result.MaxPlayers())
			}
			if len(result.PlayersSample()) != 0 {
				t.Errorf("legacy servers dont send a sample, got %v", result.PlayersSample())
			}
			if _, ok := result.Favicon(); ok {
				t.Error("legacy servers dont send a favicon")
			}
		})
	}
}

func TestPingLegacy_SendsLegacyPing(t *testing.T) {
	requestCh := make(chan []byte, 1)
	dialer := newPipeDialer(func(conn net.Conn) {
		buf := make([]byte, 2)
		if _, err := conn.Read(buf); err != nil {
			return
		}
		requestCh <- buf
		conn.Write(legacyKick("§1\x0047\x001.4.2\x00motd\x000\x0010"))
	})

	if _, err := query.PingLegacy(context.Background(), dialer, testTarget()); err != nil {
		t.Fatalf("didnt expect an error but got: %v", err)
	}

	request := <-requestCh
	if request[0] != 0xFE || request[1] != 0x01 {
		t.Errorf("expected legacy ping 0xFE 0x01 but got %#v", request)
	}
}

func TestPingLegacy_Errors(t *testing.T) {
	tt := []struct {
		name     string
		response []byte
		msg      string
	}{
		{
			name:     "wrong packet id",
			response: []byte{0x00, 0x00, 0x05, 0x00, 0x41},
			msg:      "too few data",
		},
		{
			name:     "short answer",
			response: []byte{0xFF, 0x00},
			msg:      "too few data",
		},
		{
			name:     "no answer",
			response: nil,
			msg:      "too few data",
		},
		{
			name:     "1.4 layout missing fields",
			response: legacyKick("§1\x0047\x001.4.2"),
			msg:      "malformed legacy payload",
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			server := legacyServer(tc.response)
			if tc.response == nil {
				server = func(conn net.Conn) {
					conn.Read(make([]byte, 2))
				}
			}
			dialer := newPipeDialer(server)

			_, err := query.PingLegacy(context.Background(), dialer, testTarget())
			if !errors.Is(err, query.ErrProtocol) {
				t.Fatalf("expected a protocol error but got: %v", err)
			}
			if !strings.Contains(err.Error(), tc.msg) {
				t.Errorf("expected message to contain %q but got: %v", tc.msg, err)
			}
		})
	}
}
