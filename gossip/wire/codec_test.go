package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// slot is the minimal newtype the spec's golden vector (§8, scenario 1) is
// expressed over: a bare little-endian u64.
type slot struct{ value uint64 }

func (s slot) EncodeTo(e *Encoder) { e.U64(s.value) }

func (s *slot) DecodeFrom(d *Decoder) error {
	s.value = d.U64()
	return d.Err()
}

func TestSlotGoldenVector(t *testing.T) {
	got := Encode(slot{value: 4335})
	want := []byte{0xEF, 0x10, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	require.Equal(t, want, got)

	var s slot
	require.NoError(t, Decode(got, &s))
	require.Equal(t, uint64(4335), s.value)
}

func TestBoolRoundTrip(t *testing.T) {
	e := NewEncoder(0)
	e.Bool(true)
	e.Bool(false)
	d := NewDecoder(e.Bytes())
	require.True(t, d.Bool())
	require.False(t, d.Bool())
	require.NoError(t, d.Err())
}

func TestVarBytesRoundTrip(t *testing.T) {
	e := NewEncoder(0)
	e.VarBytes([]byte("hello crds"))
	d := NewDecoder(e.Bytes())
	require.Equal(t, []byte("hello crds"), d.VarBytes())
	require.NoError(t, d.Err())
	require.Equal(t, 0, d.Remaining())
}

func TestVarBytesRejectsTruncatedLength(t *testing.T) {
	e := NewEncoder(0)
	e.U64(1 << 40) // a length prefix far larger than any remaining input
	d := NewDecoder(e.Bytes())
	d.VarBytes()
	require.Error(t, d.Err())
}

func TestFixedBytesHasNoLengthPrefix(t *testing.T) {
	e := NewEncoder(0)
	e.FixedBytes([]byte{1, 2, 3, 4})
	require.Equal(t, []byte{1, 2, 3, 4}, e.Bytes())
}

func TestDiscriminantOrder(t *testing.T) {
	e := NewEncoder(0)
	e.Discriminant(2)
	e.U32(7)
	d := NewDecoder(e.Bytes())
	require.Equal(t, uint32(2), d.Discriminant())
	require.Equal(t, uint32(7), d.U32())
}
