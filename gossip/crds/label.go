package crds

import (
	"fmt"

	"github.com/ledgerwatch/crds/common"
)

// CrdsValueLabel deterministically names the slot a CrdsValue occupies in
// the table. Two values with equal labels are alternative assertions of the
// same fact; at most one is retained.
//
// LegacyContactInfo, EpochSlots and DuplicateShred are named by originator
// alone. Vote is "subtyped": a node's n-th vote is a distinct slot, so its
// label also carries Index. Every other category is folded into KindOther
// and additionally disambiguated by OtherTag, since distinct opaque
// variants sharing an originator must not collide.
type CrdsValueLabel struct {
	Kind     CrdsDataKind
	Pubkey   common.Pubkey
	Index    uint64
	OtherTag uint32
}

func (l CrdsValueLabel) String() string {
	switch l.Kind {
	case KindVote:
		return fmt.Sprintf("Vote(%d)/%s", l.Index, l.Pubkey)
	case KindOther:
		return fmt.Sprintf("Other(%d)/%s", l.OtherTag, l.Pubkey)
	default:
		return fmt.Sprintf("%s/%s", l.Kind, l.Pubkey)
	}
}
