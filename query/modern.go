package query

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"time"
	"unicode/utf8"

	"github.com/realDragonium/mcquery/mc"
	"github.com/realDragonium/mcquery/transport"
)

// minResponseLength is the smallest frame a status response can fit in.
const minResponseLength = 10

// QueryModern runs the Server List Ping: handshake, status request and a
// single length prefixed JSON response.
func QueryModern(ctx context.Context, dialer transport.Dialer, target Target) (RawStatus, error) {
	start := time.Now()

	conn, err := dial(ctx, dialer, target)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	conn.SetDeadline(start.Add(target.Timeout))

	if err := writeStatusRequest(conn, target); err != nil {
		return nil, err
	}

	payload, err := readStatusResponse(bufio.NewReader(conn), start, target.Timeout)
	if err != nil {
		return nil, err
	}

	conn.Close()
	latency := time.Since(start)

	raw, err := decodeStatus(payload)
	if err != nil {
		return nil, err
	}
	raw[keyLatency] = latencyMillis(latency)
	return raw, nil
}

func writeStatusRequest(w io.Writer, target Target) error {
	frame := mc.NewStatusHandshake(target.Host, target.Port).Marshal().Marshal()
	frame = append(frame, mc.ServerBoundRequest{}.Marshal().Marshal()...)
	if _, err := w.Write(frame); err != nil {
		return writeError(err)
	}
	return nil
}

func readStatusResponse(r *bufio.Reader, start time.Time, timeout time.Duration) ([]byte, error) {
	length, err := mc.ReadVarInt(r)
	if err != nil {
		return nil, varIntError(err)
	}
	if length < minResponseLength {
		return nil, protocolError("response too short", nil)
	}

	// packet id, always the status response
	if _, err := r.ReadByte(); err != nil {
		return nil, readError(err)
	}

	payloadLength, err := mc.ReadVarInt(r)
	if err != nil {
		return nil, varIntError(err)
	}
	if payloadLength == 0 {
		return nil, protocolError("no data", nil)
	}
	if payloadLength < 0 || int(payloadLength) > mc.MaxPacketSize {
		return nil, protocolError("response too long", mc.ErrPacketTooBig)
	}

	payload := make([]byte, payloadLength)
	read := 0
	for read < len(payload) {
		if time.Since(start) > timeout {
			return nil, timeoutError("server read timed out", nil)
		}

		n, err := r.Read(payload[read:])
		read += n
		if n == 0 {
			if err == nil {
				err = io.ErrNoProgress
			}
			return nil, readError(err)
		}
	}
	return payload, nil
}

func decodeStatus(payload []byte) (RawStatus, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, protocolError("no data", nil)
	}
	if !utf8.Valid(payload) {
		return nil, protocolError("invalid json", errors.New("payload is not valid UTF-8"))
	}

	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()

	var raw RawStatus
	if err := decoder.Decode(&raw); err != nil {
		return nil, protocolError("invalid json", err)
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, protocolError("invalid json", errors.New("trailing data after object"))
	}
	if raw == nil {
		raw = RawStatus{}
	}
	return raw, nil
}

func dial(ctx context.Context, dialer transport.Dialer, target Target) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, target.Timeout)
	defer cancel()

	conn, err := dialer.DialContext(ctx, "tcp", target.Address())
	if err != nil {
		return nil, connectionError("failed to connect to "+target.Address(), err)
	}
	return conn, nil
}

func latencyMillis(d time.Duration) int {
	return int(d / time.Millisecond)
}
