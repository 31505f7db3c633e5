package bitmap

// Distance returns the Hamming distance between a and b: the number of
// logical bit positions at which they differ, restricted to both
// bitmaps' in-scope range (per their start/end masks).
func Distance(a, b *Bitmap) uint64 {
	if len(a.words) == 0 || len(b.words) == 0 {
		if len(a.words) == 0 && len(b.words) == 0 {
			return 0
		}
		if len(a.words) == 0 {
			return a0Weight(b)
		}
		return a0Weight(a)
	}
	var distance uint64
	aPos, bPos := 0, 0
	var aNcomp, bNcomp uint64
	for aPos < len(a.words) || bPos < len(b.words) {
		if aPos < len(a.words) && a.words[aPos]&msb == 0 {
			aNcomp += loadZerofill(a, aPos)
			aPos++
		}
		if bPos < len(b.words) && b.words[bPos]&msb == 0 {
			bNcomp += loadZerofill(b, bPos)
			bPos++
		}
		if aNcomp > 0 {
			if bNcomp > 0 {
				toSkip := aNcomp
				if bNcomp < toSkip {
					toSkip = bNcomp
				}
				aNcomp -= toSkip
				bNcomp -= toSkip
			} else {
				distance += uint64(popcount64(b.words[bPos])) - 1
				bPos++
				aNcomp--
			}
			continue
		} else if bNcomp > 0 {
			distance += uint64(popcount64(a.words[aPos])) - 1
			aPos++
			bNcomp--
			continue
		}
		distance += uint64(popcount64(a.words[aPos] ^ b.words[bPos]))
		aPos++
		bPos++
	}

	aFirst, bFirst := a.words[0], b.words[0]
	switch {
	case aFirst&msb != 0 && bFirst&msb != 0:
		distance -= uint64(popcount64((aFirst ^ bFirst) &^ a.startMask))
	case aFirst&msb != 0:
		distance -= uint64(popcount64(aFirst &^ a.startMask))
	case bFirst&msb != 0:
		distance -= uint64(popcount64(bFirst &^ b.startMask))
	}

	aLast, bLast := a.words[len(a.words)-1], b.words[len(b.words)-1]
	switch {
	case aLast&msb != 0 && bLast&msb != 0:
		distance -= uint64(popcount64((aLast ^ bLast) &^ a.endMask))
	case aLast&msb != 0:
		distance -= uint64(popcount64(aLast &^ a.endMask))
	case bLast&msb != 0:
		distance -= uint64(popcount64(bLast &^ b.endMask))
	}

	return distance
}

func a0Weight(b *Bitmap) uint64 { return b.Weight() }
