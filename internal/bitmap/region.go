package bitmap

// extractCursor tracks progress through a parent bitmap's word array
// across a sequence of adjacent, increasing intervals (bins), so that
// binning never has to restart the walk from the beginning.
type extractCursor struct {
	index      int
	ncompressed uint64
}

// extractOne extracts a single region from src, advancing cur.
func extractOne(src *Bitmap, region Interval, cur *extractCursor) *Bitmap {
	dest := &Bitmap{
		startMask: wordMax,
		endMask:   wordMax,
		building:  false,
		view:      true,
	}
	internalStart := region.Start / blockBits
	internalEnd := region.End / blockBits

	i := cur.index
	for ; i <= int(internalEnd) && i < len(src.words); i++ {
		if src.words[i]&msb != 0 {
			continue
		}
		fillValue := src.words[i]
		if internalStart >= uint64(i) {
			if internalStart <= uint64(i)+fillValue {
				dest.startMask = fillValue - (internalStart - uint64(i))
				internalStart = uint64(i)
			} else {
				internalStart -= fillValue
			}
		}
		if internalEnd <= uint64(i)+fillValue {
			dest.endMask = internalEnd - uint64(i)
			internalEnd = uint64(i)
		} else {
			internalEnd -= fillValue
		}
		cur.ncompressed += fillValue
	}
	cur.index = i

	dest.words = src.words[internalStart : internalEnd+1]
	dest.lastWord = 0
	dest.compressed = cur.ncompressed

	if src.words[internalStart]&msb != 0 {
		dest.startMask = wordMax << (region.Start % blockBits)
	}
	if src.words[internalEnd]&msb != 0 {
		dest.endMask = (wordMax >> (blockBits - region.End%blockBits)) | msb
	}
	return dest
}

// Region extracts a read-only view of the bits in [r.Start, r.End]
// (inclusive) of b. The returned Bitmap shares storage with b and must
// not outlive it.
func (b *Bitmap) Region(r Interval) (*Bitmap, error) {
	if r.End < r.Start {
		return nil, &ErrRangeOutOfBounds{Interval: r, Reason: "end before start"}
	}
	if len(b.words) == 0 {
		return New(), nil
	}
	cur := &extractCursor{}
	return extractOne(b, r, cur), nil
}

// ExtractBins extracts nbins consecutive, non-overlapping regions from
// a single parent bitmap in one pass, reusing the walk cursor between
// bins. bins[i].Start must equal bins[i-1].End+1.
func ExtractBins(src *Bitmap, bins []Interval) ([]*Bitmap, error) {
	out := make([]*Bitmap, len(bins))
	if len(src.words) == 0 {
		for i := range out {
			out[i] = New()
		}
		return out, nil
	}
	cur := &extractCursor{}
	for i, iv := range bins {
		if iv.End < iv.Start {
			return nil, &ErrRangeOutOfBounds{Interval: iv, Reason: "end before start"}
		}
		out[i] = extractOne(src, iv, cur)
	}
	return out, nil
}
