package wire

import "math"

// Key is the five-field record key, in wire order. Field order on the
// wire is fixed (cid, mid, moid, cap, acq), independent of struct
// declaration order.
type Key struct {
	CID  int32
	MID  int64
	MOID int32
	Cap  int64
	Acq  int64
}

// Less reports whether k sorts strictly before other, lexicographically
// on (CID, MID, MOID, Cap, Acq).
func (k Key) Less(other Key) bool {
	if k.CID != other.CID {
		return k.CID < other.CID
	}
	if k.MID != other.MID {
		return k.MID < other.MID
	}
	if k.MOID != other.MOID {
		return k.MOID < other.MOID
	}
	if k.Cap != other.Cap {
		return k.Cap < other.Cap
	}
	return k.Acq < other.Acq
}

// RangeEmpty reports whether the right-open range [kmin, kmax) is
// empty, i.e. kmin is not strictly less than kmax lexicographically.
func RangeEmpty(kmin, kmax Key) bool {
	return !kmin.Less(kmax)
}

// ValidForPut reports whether k may appear in a PUT request: CID must
// be non-negative, and none of CID/MID/MOID/Cap may sit at their type's
// maximum representable value. Acq is ignored (server-assigned).
func ValidForPut(k Key) bool {
	if k.CID < 0 {
		return false
	}
	return k.CID != math.MaxInt32 && k.MID != math.MaxInt64 &&
		k.MOID != math.MaxInt32 && k.Cap != math.MaxInt64
}

// ValidForPuta reports whether k may appear in a PUTA request: CID must
// be non-negative, and none of the five fields may sit at their type's
// maximum representable value.
func ValidForPuta(k Key) bool {
	return ValidForPut(k) && k.Acq != math.MaxInt64
}
