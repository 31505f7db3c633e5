package bitmap

// loadZerofill returns the number of compressed blocks represented by
// the fill word at pos, honoring the start/end masks when pos sits at
// either physical boundary of the array.
func loadZerofill(b *Bitmap, pos int) uint64 {
	switch {
	case pos == 0:
		return b.startMask + 1
	case pos+1 == len(b.words):
		return b.endMask + 1
	default:
		return b.words[pos] + 1
	}
}

func loadMasks(a, b, out *Bitmap) {
	if a.words[0]&msb != 0 {
		out.startMask = a.startMask
	} else if b.words[0]&msb != 0 {
		out.startMask = b.startMask
	}
	if a.words[len(a.words)-1]&msb != 0 {
		out.endMask = a.endMask
	} else if b.words[len(b.words)-1]&msb != 0 {
		out.endMask = b.endMask
	}
}

// appendZerofill appends a fill run of zfNum blocks at *pos, coalescing
// it into the previous output word if that word is itself a fill.
func appendZerofill(words []uint64, pos *int, zfNum uint64) []uint64 {
	if *pos > 0 && words[*pos-1]&msb == 0 {
		words[*pos-1] += zfNum
		return words
	}
	if *pos == len(words) {
		words = append(words, zfNum-1)
	} else {
		words[*pos] = zfNum - 1
	}
	*pos++
	return words
}

func newCombinator(a, b *Bitmap) *Bitmap {
	cap := int(b.compressed) + int(a.compressed) + len(a.words) + len(b.words)
	out := &Bitmap{
		words:     make([]uint64, 0, cap),
		startMask: wordMax,
		endMask:   wordMax,
	}
	loadMasks(a, b, out)
	return out
}

func finish(out *Bitmap, outPos int) *Bitmap {
	out.words = out.words[:outPos]
	out.lastWord = outPos - 1
	out.building = true
	out.Shrinkwrap()
	return out
}

func grow(words []uint64, pos int) []uint64 {
	if pos == len(words) {
		return append(words, 0)
	}
	return words
}

// Union returns A ∪ B as a newly allocated, owned bitmap.
func Union(a, b *Bitmap) *Bitmap {
	out := newCombinator(a, b)
	aPos, bPos, outPos := 0, 0, 0
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
				out.words = grow(out.words, outPos)
				out.words = appendZerofill(out.words, &outPos, toSkip)
				aNcomp -= toSkip
				bNcomp -= toSkip
			} else {
				out.words = grow(out.words, outPos)
				out.words[outPos] = b.words[bPos]
				outPos++
				bPos++
				aNcomp--
			}
			continue
		} else if bNcomp > 0 {
			out.words = grow(out.words, outPos)
			out.words[outPos] = a.words[aPos]
			outPos++
			aPos++
			bNcomp--
			continue
		}
		out.words = grow(out.words, outPos)
		out.words[outPos] = a.words[aPos] | b.words[bPos]
		outPos++
		aPos++
		bPos++
	}
	return finish(out, outPos)
}

// Intersect returns A ∩ B as a newly allocated, owned bitmap.
func Intersect(a, b *Bitmap) *Bitmap {
	out := newCombinator(a, b)
	aPos, bPos, outPos := 0, 0, 0
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
				out.words = grow(out.words, outPos)
				out.words = appendZerofill(out.words, &outPos, toSkip)
				aNcomp -= toSkip
				bNcomp -= toSkip
			} else {
				out.words = grow(out.words, outPos)
				out.words = appendZerofill(out.words, &outPos, 1)
				aNcomp--
				bPos++
			}
			continue
		} else if bNcomp > 0 {
			out.words = grow(out.words, outPos)
			out.words = appendZerofill(out.words, &outPos, 1)
			bNcomp--
			aPos++
			continue
		}
		res := a.words[aPos] & b.words[bPos]
		aPos++
		bPos++
		out.words = grow(out.words, outPos)
		if res == msb {
			out.words = appendZerofill(out.words, &outPos, 1)
		} else {
			out.words[outPos] = res
			outPos++
		}
	}
	return finish(out, outPos)
}

// Difference returns A \ B as a newly allocated, owned bitmap.
func Difference(a, b *Bitmap) *Bitmap {
	out := newCombinator(a, b)
	aPos, bPos, outPos := 0, 0, 0
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
				out.words = grow(out.words, outPos)
				out.words = appendZerofill(out.words, &outPos, toSkip)
				aNcomp -= toSkip
				bNcomp -= toSkip
			} else {
				out.words = grow(out.words, outPos)
				out.words = appendZerofill(out.words, &outPos, 1)
				aNcomp--
				bPos++
			}
			continue
		} else if bNcomp > 0 {
			out.words = grow(out.words, outPos)
			out.words[outPos] = a.words[aPos]
			outPos++
			aPos++
			bNcomp--
			continue
		}
		res := a.words[aPos] &^ b.words[bPos]
		aPos++
		bPos++
		out.words = grow(out.words, outPos)
		if res == 0 {
			out.words = appendZerofill(out.words, &outPos, 1)
		} else {
			out.words[outPos] = res | msb
			outPos++
		}
	}
	return finish(out, outPos)
}

// SymmetricDifference returns A △ B as a newly allocated, owned bitmap.
func SymmetricDifference(a, b *Bitmap) *Bitmap {
	out := newCombinator(a, b)
	aPos, bPos, outPos := 0, 0, 0
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
				out.words = grow(out.words, outPos)
				out.words = appendZerofill(out.words, &outPos, toSkip)
				aNcomp -= toSkip
				bNcomp -= toSkip
			} else {
				out.words = grow(out.words, outPos)
				out.words[outPos] = b.words[bPos]
				outPos++
				bPos++
				aNcomp--
			}
			continue
		} else if bNcomp > 0 {
			out.words = grow(out.words, outPos)
			out.words[outPos] = a.words[aPos]
			outPos++
			aPos++
			bNcomp--
			continue
		}
		res := a.words[aPos] ^ b.words[bPos]
		aPos++
		bPos++
		out.words = grow(out.words, outPos)
		if res == 0 {
			out.words = appendZerofill(out.words, &outPos, 1)
		} else {
			out.words[outPos] = res | msb
			outPos++
		}
	}
	return finish(out, outPos)
}
