package crds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerwatch/crds/common"
	"github.com/ledgerwatch/crds/gossip/wire"
)

// TestCrdsValueRoundTrip checks that decode(encode(v)) reproduces v exactly,
// for each of the five CrdsData variants.
func TestCrdsValueRoundTrip(t *testing.T) {
	sig := [64]byte{1, 2, 3}

	cases := []struct {
		name string
		data CrdsData
	}{
		{"LegacyContactInfo", &LegacyContactInfo{
			ID: pubkeyFrom(1), WallclockMs: 42, ShredVersion: 7,
			Gossip: "127.0.0.1:8001", Tpu: "127.0.0.1:8003", Rpc: "127.0.0.1:8899",
		}},
		{"Vote", &Vote{
			Index: 3, From: pubkeyFrom(2), WallclockMs: 99, Slot: 1000,
			TxHash: common.BytesToHash([]byte("some-tx-signature")),
		}},
		{"EpochSlots", &EpochSlots{
			From: pubkeyFrom(3), WallclockMs: 7, Slots: []uint64{1, 2, 3, 100, 101},
		}},
		{"EpochSlotsEmpty", &EpochSlots{
			From: pubkeyFrom(3), WallclockMs: 7, Slots: nil,
		}},
		{"DuplicateShred", &DuplicateShred{
			From: pubkeyFrom(4), WallclockMs: 8, Slot: 55, ShredType: 1,
			Chunk: []byte{0xde, 0xad, 0xbe, 0xef},
		}},
		{"Other", &Other{
			Tag: 99, From: pubkeyFrom(5), WallclockMs: 9, Payload: []byte("opaque"),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			original := CrdsValue{Data: tc.data, Signature: sig}
			encoded := wire.Encode(original)

			var decoded CrdsValue
			require.NoError(t, wire.Decode(encoded, &decoded))

			assert.Equal(t, original.Data, decoded.Data)
			assert.Equal(t, original.Signature, decoded.Signature)
			assert.Equal(t, original.Label(), decoded.Label())
			assert.Equal(t, HashValue(original), HashValue(decoded))
		})
	}
}

// TestCrdsValueLabelDisambiguation documents which fields the table uses to
// distinguish slots per category.
func TestCrdsValueLabelDisambiguation(t *testing.T) {
	pk := pubkeyFrom(1)

	v0 := CrdsValue{Data: &Vote{Index: 0, From: pk}}
	v1 := CrdsValue{Data: &Vote{Index: 1, From: pk}}
	assert.NotEqual(t, v0.Label(), v1.Label(), "distinct vote indices must be distinct slots")

	o1 := CrdsValue{Data: &Other{Tag: 10, From: pk}}
	o2 := CrdsValue{Data: &Other{Tag: 11, From: pk}}
	assert.NotEqual(t, o1.Label(), o2.Label(), "distinct opaque tags must be distinct slots")

	es1 := CrdsValue{Data: &EpochSlots{From: pk, Slots: []uint64{1}}}
	es2 := CrdsValue{Data: &EpochSlots{From: pk, Slots: []uint64{2, 3}}}
	assert.Equal(t, es1.Label(), es2.Label(), "epoch slots are named by originator alone")
}
