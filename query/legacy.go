package query

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/realDragonium/mcquery/mc"
	"github.com/realDragonium/mcquery/transport"
	"golang.org/x/text/encoding/unicode"
)

const (
	legacyResponseSize = 512
	legacyMinResponse  = 4

	// Servers that answer without the "§1" marker do not report a version;
	// they all speak this one.
	legacyProtocolVersion = 39
	legacyVersionName     = "1.3"
)

var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// PingLegacy queries a server with the pre-1.7 ping and converts the kick
// message it answers with into the same shape QueryModern returns.
func PingLegacy(ctx context.Context, dialer transport.Dialer, target Target) (RawStatus, error) {
	start := time.Now()

	conn, err := dial(ctx, dialer, target)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	conn.SetDeadline(start.Add(target.Timeout))

	if _, err := conn.Write(mc.LegacyPing); err != nil {
		return nil, writeError(err)
	}

	buf := make([]byte, legacyResponseSize)
	n, err := io.ReadAtLeast(conn, buf, legacyMinResponse)
	if err != nil {
		return nil, readError(err)
	}

	conn.Close()
	latency := time.Since(start)

	raw, err := decodeLegacy(buf[:n])
	if err != nil {
		return nil, err
	}
	raw[keyLatency] = latencyMillis(latency)
	return raw, nil
}

func decodeLegacy(data []byte) (RawStatus, error) {
	if len(data) < legacyMinResponse || data[0] != mc.LegacyKickPacketID {
		return nil, protocolError("too few data", nil)
	}

	// kick packet id and the length field are skipped, the length is implied
	// by what was read
	decoded, err := utf16BE.NewDecoder().Bytes(data[3:])
	if err != nil {
		return nil, protocolError("malformed legacy payload", err)
	}
	text := string(decoded)

	if strings.HasPrefix(text, "§1") {
		fields := strings.Split(text, "\x00")
		if len(fields) < 6 {
			return nil, protocolError("malformed legacy payload", nil)
		}
		return RawStatus{
			"version": map[string]interface{}{
				"protocol": fields[1],
				"name":     fields[2],
			},
			"description": map[string]interface{}{
				"text": fields[3],
			},
			"players": map[string]interface{}{
				"online": leadingInt(fields[4]),
				"max":    leadingInt(fields[5]),
			},
		}, nil
	}

	fields := strings.Split(text, "§")
	var online, maxPlayers int
	if len(fields) > 1 {
		online = leadingInt(fields[1])
	}
	if len(fields) > 2 {
		maxPlayers = leadingInt(fields[2])
	}
	return RawStatus{
		"version": map[string]interface{}{
			"protocol": legacyProtocolVersion,
			"name":     legacyVersionName,
		},
		"description": map[string]interface{}{
			"text": dropLastRune(fields[0]),
		},
		"players": map[string]interface{}{
			"online": online,
			"max":    maxPlayers,
		},
	}, nil
}

// dropLastRune removes the boundary character old servers end the motd with.
func dropLastRune(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	return string(runes[:len(runes)-1])
}
