package mc

import (
	"bufio"
	"net"
)

type McConn interface {
	ReadPacket() (Packet, error)
	WritePacket(p Packet) error
}

// NewMcConn wraps conn for packet level reads and writes. Status servers in
// tests and tools speak through it.
func NewMcConn(conn net.Conn) mcConn {
	return mcConn{
		netConn: conn,
		reader:  bufio.NewReader(conn),
	}
}

type mcConn struct {
	netConn net.Conn
	reader  DecodeReader
}

func (conn mcConn) ReadPacket() (Packet, error) {
	pk, err := ReadPacket(conn.reader)
	return pk, err
}

// ReadBytes reads exactly n raw bytes, for requests that are not framed.
func (conn mcConn) ReadBytes(n int) ([]byte, error) {
	return ReadNBytes(conn.reader, n)
}

func (conn mcConn) WritePacket(p Packet) error {
	_, err := conn.netConn.Write(p.Marshal())
	return err
}
