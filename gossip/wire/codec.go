// Package wire implements the canonical little-endian, length-prefixed,
// tag-numbered encoding that CrdsValue hashes are derived from. The format
// must stay byte-identical across every node running it: drift here
// silently breaks bloom-filter membership and cross-peer hashing, so every
// primitive is written by hand rather than through reflection.
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Encoder accumulates a canonical encoding. The zero value is usable.
type Encoder struct {
	buf bytes.Buffer
}

// NewEncoder returns an Encoder with a pre-sized buffer.
func NewEncoder(sizeHint int) *Encoder {
	e := &Encoder{}
	if sizeHint > 0 {
		e.buf.Grow(sizeHint)
	}
	return e
}

// Bytes returns the accumulated canonical encoding.
func (e *Encoder) Bytes() []byte { return e.buf.Bytes() }

// Bool writes a single-byte boolean.
func (e *Encoder) Bool(v bool) {
	if v {
		e.buf.WriteByte(1)
	} else {
		e.buf.WriteByte(0)
	}
}

// U8 writes a single byte.
func (e *Encoder) U8(v uint8) { e.buf.WriteByte(v) }

// U16 writes a little-endian u16.
func (e *Encoder) U16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	e.buf.Write(b[:])
}

// U32 writes a little-endian u32. Also used for tagged-union discriminants.
func (e *Encoder) U32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

// U64 writes a little-endian u64.
func (e *Encoder) U64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}

// I64 writes a little-endian, two's-complement i64.
func (e *Encoder) I64(v int64) { e.U64(uint64(v)) }

// Discriminant writes the u32 tag identifying a tagged-union variant, by
// its declaration order.
func (e *Encoder) Discriminant(tag uint32) { e.U32(tag) }

// FixedBytes writes b inline with no length prefix — for fixed-size arrays
// such as hashes, pubkeys and signatures.
func (e *Encoder) FixedBytes(b []byte) { e.buf.Write(b) }

// VarBytes writes a u64 length prefix followed by b — for variable-length
// byte sequences.
func (e *Encoder) VarBytes(b []byte) {
	e.U64(uint64(len(b)))
	e.buf.Write(b)
}

// String writes s as a length-prefixed sequence of UTF-8 bytes.
func (e *Encoder) String(s string) { e.VarBytes([]byte(s)) }

// Decoder reads back a canonical encoding produced by Encoder.
type Decoder struct {
	r   *bytes.Reader
	err error
}

func NewDecoder(b []byte) *Decoder { return &Decoder{r: bytes.NewReader(b)} }

// Err returns the first error encountered by any Decoder method, if any.
func (d *Decoder) Err() error { return d.err }

func (d *Decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

func (d *Decoder) read(n int) []byte {
	if d.err != nil {
		return make([]byte, n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(d.r, b); err != nil {
		d.fail(fmt.Errorf("wire: short read of %d bytes: %w", n, err))
	}
	return b
}

func (d *Decoder) Bool() bool {
	b := d.read(1)
	return b[0] != 0
}

func (d *Decoder) U8() uint8 { return d.read(1)[0] }

func (d *Decoder) U16() uint16 { return binary.LittleEndian.Uint16(d.read(2)) }

func (d *Decoder) U32() uint32 { return binary.LittleEndian.Uint32(d.read(4)) }

func (d *Decoder) U64() uint64 { return binary.LittleEndian.Uint64(d.read(8)) }

func (d *Decoder) I64() int64 { return int64(d.U64()) }

// Discriminant reads the u32 tag of a tagged union.
func (d *Decoder) Discriminant() uint32 { return d.U32() }

// FixedBytes reads exactly n bytes inline, with no length prefix.
func (d *Decoder) FixedBytes(n int) []byte { return d.read(n) }

// VarBytes reads a u64-length-prefixed byte sequence.
func (d *Decoder) VarBytes() []byte {
	n := d.U64()
	if d.err != nil {
		return nil
	}
	if n > uint64(d.r.Len()) {
		d.fail(fmt.Errorf("wire: length prefix %d exceeds remaining input", n))
		return nil
	}
	return d.read(int(n))
}

func (d *Decoder) String() string { return string(d.VarBytes()) }

// Remaining returns the number of input bytes not yet consumed; zero means
// the input is fully consumed.
func (d *Decoder) Remaining() int { return d.r.Len() }

// Encodable is implemented by every value the canonical encoding can
// serialize: CrdsValue and each CrdsData variant.
type Encodable interface {
	EncodeTo(e *Encoder)
}

// Decodable is the inverse of Encodable: it fills itself in from d.
type Decodable interface {
	DecodeFrom(d *Decoder) error
}

// Encode runs v's canonical encoding to completion.
func Encode(v Encodable) []byte {
	e := NewEncoder(64)
	v.EncodeTo(e)
	return e.Bytes()
}

// Decode fills v from its canonical encoding in b.
func Decode(b []byte, v Decodable) error {
	d := NewDecoder(b)
	if err := v.DecodeFrom(d); err != nil {
		return err
	}
	if err := d.Err(); err != nil {
		return err
	}
	if d.Remaining() != 0 {
		return fmt.Errorf("wire: %d trailing bytes after decode", d.Remaining())
	}
	return nil
}
