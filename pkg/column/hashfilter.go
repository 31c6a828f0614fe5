package column

import (
	"github.com/exaxorg/accelerator-sub001/pkg/dserrors"
	"github.com/exaxorg/accelerator-sub001/pkg/dstype"
)

// Hashfilter restricts a writer or reader to one of Slices disjoint
// horizontal partitions. The same routing rule runs on both sides, so a
// reader-side filter over an unrestricted file selects exactly the rows a
// writer-side filter would have kept.
type Hashfilter struct {
	Sliceno int
	Slices  int

	// SpreadNone routes every None to slice Slices-1 instead of hashing
	// it, so all Nones land in one predictable slice.
	SpreadNone bool
}

func (h *Hashfilter) validate() error {
	if h == nil {
		return nil
	}
	if h.Slices < 1 {
		return dserrors.Newf(dserrors.ErrorTypeArgument, "slices must be positive, got %d", h.Slices)
	}
	if h.Sliceno < 0 || h.Sliceno >= h.Slices {
		return dserrors.Newf(dserrors.ErrorTypeArgument, "sliceno %d out of range 0..%d", h.Sliceno, h.Slices-1)
	}
	return nil
}

// slot returns the slice a canonical value belongs to. None hashes to 0
// unless SpreadNone is set.
func (h *Hashfilter) slot(codec dstype.Codec, canon interface{}) (int, error) {
	if canon == nil {
		if h.SpreadNone {
			return h.Slices - 1, nil
		}
		return 0, nil
	}
	hash, err := codec.Hash(canon)
	if err != nil {
		return 0, err
	}
	return int(hash % uint64(h.Slices)), nil
}

// Slot returns the slice v belongs to, applying the same canonicalization
// and routing a writer would.
func (h *Hashfilter) Slot(codec dstype.Codec, v interface{}) (int, error) {
	if h == nil {
		return 0, dserrors.New(dserrors.ErrorTypeArgument, "nil hashfilter")
	}
	if err := h.validate(); err != nil {
		return 0, err
	}
	if v == nil {
		return h.slot(codec, nil)
	}
	canon, err := codec.Canon(v)
	if err != nil {
		return 0, err
	}
	return h.slot(codec, canon)
}

// keep reports whether a canonical value belongs to this filter's slice.
func (h *Hashfilter) keep(codec dstype.Codec, canon interface{}) (bool, error) {
	slot, err := h.slot(codec, canon)
	if err != nil {
		return false, err
	}
	return slot == h.Sliceno, nil
}
