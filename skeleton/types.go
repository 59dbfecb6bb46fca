package skeleton

import (
	"github.com/ethereum/go-ethereum/common"
)

// Segment is a contiguous run of stashed headers with block numbers in
// [Tail, Head]. Next is the parent hash of the header stashed at Tail,
// used to verify and extend the segment backwards.
//
// Invariant: headerStore.Get(Tail).ParentHash == Next.
type Segment struct {
	Head uint64      `json:"head"`
	Tail uint64      `json:"tail"`
	Next common.Hash `json:"next"`
}

// Progress is the skeleton's persisted sync state: an ordered, disjoint
// list of segments (lowest number first) plus the two status booleans
// below.
type Progress struct {
	Segments           []*Segment `json:"segments"`
	Linked             bool       `json:"linked"`
	CanonicalHeadReset bool       `json:"canonicalHeadReset"`
}

// rlpProgress is the on-disk encoding of Progress: a 3-element list of
// [segments, linked, canonicalHeadReset], matching persisted
// layout exactly so the KV encoding survives restarts.
type rlpSegment struct {
	Head uint64
	Tail uint64
	Next common.Hash
}

type rlpProgress struct {
	Segments           []rlpSegment
	Linked             bool
	CanonicalHeadReset bool
}

func toRLP(p *Progress) rlpProgress {
	out := rlpProgress{
		Segments:           make([]rlpSegment, len(p.Segments)),
		Linked:             p.Linked,
		CanonicalHeadReset: p.CanonicalHeadReset,
	}
	for i, s := range p.Segments {
		out.Segments[i] = rlpSegment{Head: s.Head, Tail: s.Tail, Next: s.Next}
	}
	return out
}

func fromRLP(r rlpProgress) *Progress {
	out := &Progress{
		Segments:           make([]*Segment, len(r.Segments)),
		Linked:             r.Linked,
		CanonicalHeadReset: r.CanonicalHeadReset,
	}
	for i, s := range r.Segments {
		out.Segments[i] = &Segment{Head: s.Head, Tail: s.Tail, Next: s.Next}
	}
	return out
}

// Status flags returned by setHead/putBlocks so the caller can drive the
// scheduler's state machine without treating normal outcomes as errors.
type Status uint8

const (
	StatusNone Status = iota
	StatusSyncReorged
	StatusSyncMerged
	StatusReorgDenied
	StatusFillCanonical
)

func (s Status) String() string {
	switch s {
	case StatusSyncReorged:
		return "SyncReorged"
	case StatusSyncMerged:
		return "SyncMerged"
	case StatusReorgDenied:
		return "ReorgDenied"
	case StatusFillCanonical:
		return "FillCanonical"
	default:
		return "None"
	}
}
