package query_test

import (
	"context"
	"io"
	"net"
	"sync"
	"time"

	"github.com/realDragonium/mcquery/mc"
	"golang.org/x/text/encoding/unicode"
)

var defaultTimeout = 500 * time.Millisecond

// pipeDialer hands out net.Pipe connections. The n-th dial is answered by
// servers[n], the last server answers every dial after that.
type pipeDialer struct {
	mu      sync.Mutex
	calls   int
	servers []func(net.Conn)
}

func newPipeDialer(servers ...func(net.Conn)) *pipeDialer {
	return &pipeDialer{servers: servers}
}

func (d *pipeDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	d.mu.Lock()
	index := d.calls
	d.calls++
	d.mu.Unlock()

	if index >= len(d.servers) {
		index = len(d.servers) - 1
	}
	serve := d.servers[index]

	c1, c2 := net.Pipe()
	go func() {
		defer c2.Close()
		serve(c2)
	}()
	return c1, nil
}

func (d *pipeDialer) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// readStatusRequest consumes the handshake and the status request.
func readStatusRequest(conn net.Conn) (mc.ServerBoundHandshake, mc.Packet, error) {
	mcConn := mc.NewMcConn(conn)
	hsPk, err := mcConn.ReadPacket()
	if err != nil {
		return mc.ServerBoundHandshake{}, mc.Packet{}, err
	}
	hs, err := mc.UnmarshalServerBoundHandshake(hsPk)
	if err != nil {
		return hs, mc.Packet{}, err
	}
	requestPk, err := mcConn.ReadPacket()
	return hs, requestPk, err
}

func modernServer(payload string) func(net.Conn) {
	return func(conn net.Conn) {
		if _, _, err := readStatusRequest(conn); err != nil {
			return
		}
		mc.NewMcConn(conn).WritePacket(mc.ClientBoundResponse{
			JSONResponse: mc.String(payload),
		}.Marshal())
	}
}

// rawServer answers the status request with response as is and hangs up.
func rawServer(response []byte) func(net.Conn) {
	return func(conn net.Conn) {
		if _, _, err := readStatusRequest(conn); err != nil {
			return
		}
		conn.Write(response)
	}
}

// stallingServer sends response and then keeps the connection open until
// the client gives up.
func stallingServer(response []byte) func(net.Conn) {
	return func(conn net.Conn) {
		if _, _, err := readStatusRequest(conn); err != nil {
			return
		}
		conn.Write(response)
		io.Copy(io.Discard, conn)
	}
}

// hangUpServer reads the status request and closes without answering.
func hangUpServer() func(net.Conn) {
	return func(conn net.Conn) {
		readStatusRequest(conn)
	}
}

func legacyServer(response []byte) func(net.Conn) {
	return func(conn net.Conn) {
		if _, err := mc.NewMcConn(conn).ReadBytes(len(mc.LegacyPing)); err != nil {
			return
		}
		conn.Write(response)
	}
}

// legacyKick encodes text the way old servers answer a legacy ping.
func legacyKick(text string) []byte {
	encoded, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder().String(text)
	if err != nil {
		panic(err)
	}
	chars := len(encoded) / 2
	return append([]byte{mc.LegacyKickPacketID, byte(chars >> 8), byte(chars)}, encoded...)
}

// partialFrame declares a payload of declared bytes but only carries payload.
func partialFrame(declared int, payload []byte) []byte {
	payloadLength := mc.VarInt(declared).Encode()
	total := mc.VarInt(1 + len(payloadLength) + declared).Encode()

	var frame []byte
	frame = append(frame, total...)
	frame = append(frame, mc.ClientBoundResponsePacketID)
	frame = append(frame, payloadLength...)
	return append(frame, payload...)
}
