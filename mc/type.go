package mc

import (
	"errors"
	"io"
)

// MaxVarIntLen is the number of 7-bit groups a VarInt may span.
const MaxVarIntLen = 5

var ErrVarIntTooBig = errors.New("VarInt too large")

// A Field is both FieldEncoder and FieldDecoder
type Field interface {
	FieldEncoder
	FieldDecoder
}

// A FieldEncoder can be encode as minecraft protocol used.
type FieldEncoder interface {
	Encode() []byte
}

// A FieldDecoder can Decode from minecraft protocol
type FieldDecoder interface {
	Decode(r DecodeReader) error
}

//DecodeReader is both io.Reader and io.ByteReader
type DecodeReader interface {
	io.ByteReader
	io.Reader
}

type (
	// UnsignedShort is unsigned 16-bit integer
	UnsignedShort uint16
	// String is sequence of Unicode scalar values
	String string
	// VarInt is variable-length data encoding a two's complement signed 32-bit integer
	VarInt int32
)

// ReadNBytes read N bytes from bytes.Reader
func ReadNBytes(r DecodeReader, n int) ([]byte, error) {
	bb := make([]byte, n)
	var err error
	for i := 0; i < n; i++ {
		bb[i], err = r.ReadByte()
		if err != nil {
			return nil, err
		}
	}
	return bb, nil
}

// Encode a String
func (s String) Encode() []byte {
	byteString := []byte(s)
	var bb []byte
	bb = append(bb, VarInt(len(byteString)).Encode()...) // len
	bb = append(bb, byteString...)                       // data
	return bb
}

// Decode a String
func (s *String) Decode(r DecodeReader) error {
	var l VarInt // String length
	if err := l.Decode(r); err != nil {
		return err
	}
	if l < 0 {
		return errors.New("negative string length")
	}

	bb, err := ReadNBytes(r, int(l))
	if err != nil {
		return err
	}

	*s = String(bb)
	return nil
}

// Encode a Unsigned Short
func (us UnsignedShort) Encode() []byte {
	n := uint16(us)
	return []byte{
		byte(n >> 8),
		byte(n),
	}
}

// Decode a UnsignedShort
func (us *UnsignedShort) Decode(r DecodeReader) error {
	bb, err := ReadNBytes(r, 2)
	if err != nil {
		return err
	}

	*us = UnsignedShort(uint16(bb[0])<<8 | uint16(bb[1]))
	return nil
}

// Encode a VarInt
func (v VarInt) Encode() []byte {
	num := uint32(v)
	var bb []byte
	for {
		b := num & 0x7F
		num >>= 7
		if num != 0 {
			b |= 0x80
		}
		bb = append(bb, byte(b))
		if num == 0 {
			break
		}
	}
	return bb
}

// Decode a VarInt. A stream that ends early is an error.
func (v *VarInt) Decode(r DecodeReader) error {
	n, err := readVarInt(r)
	if err != nil {
		return err
	}

	*v = n
	return nil
}

// ReadVarInt decodes a VarInt from a live connection. When the stream ends
// before the terminating group it returns 0 without an error, so callers have
// to treat 0 as "nothing was read" wherever 0 is not a plausible value.
func ReadVarInt(r io.ByteReader) (VarInt, error) {
	n, err := readVarInt(r)
	if errors.Is(err, io.EOF) {
		return 0, nil
	}
	return n, err
}

func readVarInt(r io.ByteReader) (VarInt, error) {
	var n uint32
	for i := 0; ; i++ {
		sec, err := r.ReadByte()
		if err != nil {
			return 0, err
		}

		n |= uint32(sec&0x7F) << uint32(7*i)

		if i >= MaxVarIntLen {
			return 0, ErrVarIntTooBig
		} else if sec&0x80 == 0 {
			break
		}
	}

	return VarInt(n), nil
}
