package crds

import (
	"github.com/ledgerwatch/crds/common"
	"github.com/ledgerwatch/crds/gossip/wire"
)

// LegacyContactInfo announces a node's network addresses and shred version.
// It is the only category with its own secondary index outside the
// cursor-keyed ones (`contact_infos`) and the only category that updates
// `shred_versions`.
type LegacyContactInfo struct {
	ID           common.Pubkey
	WallclockMs  uint64
	ShredVersion uint16
	Gossip       string
	Tpu          string
	Rpc          string
}

func (c *LegacyContactInfo) Kind() CrdsDataKind    { return KindLegacyContactInfo }
func (c *LegacyContactInfo) Pubkey() common.Pubkey { return c.ID }
func (c *LegacyContactInfo) Wallclock() uint64     { return c.WallclockMs }
func (c *LegacyContactInfo) Label() CrdsValueLabel {
	return CrdsValueLabel{Kind: KindLegacyContactInfo, Pubkey: c.ID}
}

func (c *LegacyContactInfo) EncodeTo(e *wire.Encoder) {
	e.FixedBytes(c.ID[:])
	e.U64(c.WallclockMs)
	e.U16(c.ShredVersion)
	e.String(c.Gossip)
	e.String(c.Tpu)
	e.String(c.Rpc)
}

func (c *LegacyContactInfo) DecodeFrom(d *wire.Decoder) error {
	c.ID = common.BytesToPubkey(d.FixedBytes(common.PubkeyLength))
	c.WallclockMs = d.U64()
	c.ShredVersion = d.U16()
	c.Gossip = d.String()
	c.Tpu = d.String()
	c.Rpc = d.String()
	return d.Err()
}

// Vote is a node's n-th vote transaction announcement. Index makes it a
// "subtyped" category: two votes from the same originator with different
// Index are different slots in the table.
type Vote struct {
	Index       uint8
	From        common.Pubkey
	WallclockMs uint64
	Slot        uint64
	TxHash      common.Hash
}

func (v *Vote) Kind() CrdsDataKind    { return KindVote }
func (v *Vote) Pubkey() common.Pubkey { return v.From }
func (v *Vote) Wallclock() uint64     { return v.WallclockMs }
func (v *Vote) Label() CrdsValueLabel {
	return CrdsValueLabel{Kind: KindVote, Pubkey: v.From, Index: uint64(v.Index)}
}

func (v *Vote) EncodeTo(e *wire.Encoder) {
	e.U8(v.Index)
	e.FixedBytes(v.From[:])
	e.U64(v.WallclockMs)
	e.U64(v.Slot)
	e.FixedBytes(v.TxHash[:])
}

func (v *Vote) DecodeFrom(d *wire.Decoder) error {
	v.Index = d.U8()
	v.From = common.BytesToPubkey(d.FixedBytes(common.PubkeyLength))
	v.WallclockMs = d.U64()
	v.Slot = d.U64()
	v.TxHash = common.BytesToHash(d.FixedBytes(common.HashLength))
	return d.Err()
}

// EpochSlots reports which slots of the current epoch a node has replayed.
type EpochSlots struct {
	From        common.Pubkey
	WallclockMs uint64
	Slots       []uint64
}

func (s *EpochSlots) Kind() CrdsDataKind    { return KindEpochSlots }
func (s *EpochSlots) Pubkey() common.Pubkey { return s.From }
func (s *EpochSlots) Wallclock() uint64     { return s.WallclockMs }
func (s *EpochSlots) Label() CrdsValueLabel {
	return CrdsValueLabel{Kind: KindEpochSlots, Pubkey: s.From}
}

func (s *EpochSlots) EncodeTo(e *wire.Encoder) {
	e.FixedBytes(s.From[:])
	e.U64(s.WallclockMs)
	e.U64(uint64(len(s.Slots)))
	for _, sl := range s.Slots {
		e.U64(sl)
	}
}

func (s *EpochSlots) DecodeFrom(d *wire.Decoder) error {
	s.From = common.BytesToPubkey(d.FixedBytes(common.PubkeyLength))
	s.WallclockMs = d.U64()
	n := d.U64()
	if d.Err() != nil {
		return d.Err()
	}
	s.Slots = make([]uint64, 0, n)
	for i := uint64(0); i < n; i++ {
		s.Slots = append(s.Slots, d.U64())
	}
	return d.Err()
}

// DuplicateShred proves two conflicting shreds were observed for the same
// (slot, index), evidence of a faulty or malicious leader.
type DuplicateShred struct {
	From        common.Pubkey
	WallclockMs uint64
	Slot        uint64
	ShredType   uint8
	Chunk       []byte
}

func (s *DuplicateShred) Kind() CrdsDataKind    { return KindDuplicateShred }
func (s *DuplicateShred) Pubkey() common.Pubkey { return s.From }
func (s *DuplicateShred) Wallclock() uint64     { return s.WallclockMs }
func (s *DuplicateShred) Label() CrdsValueLabel {
	return CrdsValueLabel{Kind: KindDuplicateShred, Pubkey: s.From}
}

func (s *DuplicateShred) EncodeTo(e *wire.Encoder) {
	e.FixedBytes(s.From[:])
	e.U64(s.WallclockMs)
	e.U64(s.Slot)
	e.U8(s.ShredType)
	e.VarBytes(s.Chunk)
}

func (s *DuplicateShred) DecodeFrom(d *wire.Decoder) error {
	s.From = common.BytesToPubkey(d.FixedBytes(common.PubkeyLength))
	s.WallclockMs = d.U64()
	s.Slot = d.U64()
	s.ShredType = d.U8()
	s.Chunk = d.VarBytes()
	return d.Err()
}

// Other carries every category this module treats uniformly, with no
// secondary index. Tag preserves the original wire discriminant so a
// round-tripped value re-encodes identically even though this module never
// inspects Payload.
type Other struct {
	Tag         uint32
	From        common.Pubkey
	WallclockMs uint64
	Payload     []byte
}

func (o *Other) Kind() CrdsDataKind    { return KindOther }
func (o *Other) Pubkey() common.Pubkey { return o.From }
func (o *Other) Wallclock() uint64     { return o.WallclockMs }
func (o *Other) Label() CrdsValueLabel {
	return CrdsValueLabel{Kind: KindOther, Pubkey: o.From, OtherTag: o.Tag}
}

func (o *Other) EncodeTo(e *wire.Encoder) {
	e.FixedBytes(o.From[:])
	e.U64(o.WallclockMs)
	e.VarBytes(o.Payload)
}

func (o *Other) DecodeFrom(d *wire.Decoder) error {
	o.From = common.BytesToPubkey(d.FixedBytes(common.PubkeyLength))
	o.WallclockMs = d.U64()
	o.Payload = d.VarBytes()
	return d.Err()
}
