package crds

import (
	"fmt"

	"github.com/ledgerwatch/crds/common"
	"github.com/ledgerwatch/crds/gossip/wire"
)

// CrdsDataKind discriminates the tagged union a CrdsValue's payload belongs
// to. Values 0-3 are the categories the table secondarily indexes; KindOther
// folds every remaining real-world variant (transactions, node-instance,
// lowest-slot, ...) into one uniformly-treated bucket with no secondary
// index of its own.
//
// The numeric value doubles as the wire discriminant for the four indexed
// kinds; KindOther is never written literally — its wire discriminant is
// whatever tag the opaque payload originally carried (Other.Tag).
type CrdsDataKind uint32

const (
	KindLegacyContactInfo CrdsDataKind = iota
	KindVote
	KindEpochSlots
	KindDuplicateShred
	KindOther
)

func (k CrdsDataKind) String() string {
	switch k {
	case KindLegacyContactInfo:
		return "LegacyContactInfo"
	case KindVote:
		return "Vote"
	case KindEpochSlots:
		return "EpochSlots"
	case KindDuplicateShred:
		return "DuplicateShred"
	case KindOther:
		return "Other"
	default:
		return fmt.Sprintf("CrdsDataKind(%d)", uint32(k))
	}
}

// CrdsData is the tagged-union payload of a CrdsValue. Every category
// exposes its label and wallclock; the concrete field schemas beyond that
// are this module's own business, not a concern of the table or the wire
// discriminant dispatch around it.
type CrdsData interface {
	wire.Encodable
	Kind() CrdsDataKind
	Pubkey() common.Pubkey
	Wallclock() uint64
	Label() CrdsValueLabel
}

// CrdsValue is the signed, opaque gossip payload the table stores. The
// core never verifies Signature: that is the transport/crypto
// collaborator's job.
type CrdsValue struct {
	Data      CrdsData
	Signature [64]byte
}

func (v CrdsValue) Label() CrdsValueLabel   { return v.Data.Label() }
func (v CrdsValue) Wallclock() uint64       { return v.Data.Wallclock() }
func (v CrdsValue) Pubkey() common.Pubkey   { return v.Data.Pubkey() }
func (v CrdsValue) Kind() CrdsDataKind      { return v.Data.Kind() }

// EncodeTo writes the canonical encoding the value hash is derived from:
// the data's wire discriminant, its fields, then the raw signature bytes —
// the value hash is SHA-256 over this full encoding of payload plus
// signature.
func (v CrdsValue) EncodeTo(e *wire.Encoder) {
	e.Discriminant(wireTag(v.Data))
	v.Data.EncodeTo(e)
	e.FixedBytes(v.Signature[:])
}

// wireTag returns the discriminant CrdsValue.EncodeTo writes for data: the
// kind's own value for the four indexed kinds, or the opaque variant's
// original tag for KindOther.
func wireTag(data CrdsData) uint32 {
	if o, ok := data.(*Other); ok {
		return o.Tag
	}
	return uint32(data.Kind())
}

// DecodeFrom reconstructs a CrdsValue from its canonical encoding,
// dispatching on the leading discriminant to the matching variant decoder.
func (v *CrdsValue) DecodeFrom(d *wire.Decoder) error {
	tag := d.Discriminant()
	data, err := decodeCrdsData(tag, d)
	if err != nil {
		return err
	}
	v.Data = data
	copy(v.Signature[:], d.FixedBytes(64))
	return d.Err()
}

func decodeCrdsData(tag uint32, d *wire.Decoder) (CrdsData, error) {
	switch tag {
	case uint32(KindLegacyContactInfo):
		var lci LegacyContactInfo
		if err := lci.DecodeFrom(d); err != nil {
			return nil, err
		}
		return &lci, nil
	case uint32(KindVote):
		var vo Vote
		if err := vo.DecodeFrom(d); err != nil {
			return nil, err
		}
		return &vo, nil
	case uint32(KindEpochSlots):
		var es EpochSlots
		if err := es.DecodeFrom(d); err != nil {
			return nil, err
		}
		return &es, nil
	case uint32(KindDuplicateShred):
		var ds DuplicateShred
		if err := ds.DecodeFrom(d); err != nil {
			return nil, err
		}
		return &ds, nil
	default:
		o := &Other{Tag: tag}
		if err := o.DecodeFrom(d); err != nil {
			return nil, err
		}
		return o, nil
	}
}
