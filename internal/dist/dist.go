// Package dist computes pairwise Hamming-distance matrices between
// two sets of sample bitmaps over a region or a series of bins, and
// renders them as phylip or JSON, with an optional classical
// multidimensional-scaling projection for population-structure views.
package dist

import (
	"runtime"

	"github.com/tjkurowski/tersect-go/internal/arena"
	"github.com/tjkurowski/tersect-go/internal/bitmap"
	"github.com/tjkurowski/tersect-go/internal/region"
)

// maxConcurrentRows bounds how many matrix rows are computed at once.
var maxConcurrentRows = runtime.GOMAXPROCS(0)

// Matrix is a (possibly asymmetric) distance matrix between row
// samples A and column samples B over one region.
type Matrix struct {
	RowNames []string
	ColNames []string
	D        [][]uint64
	// Symmetric is true when RowNames and ColNames name the same set
	// in the same order, in which case only the upper triangle was
	// computed and D is mirrored.
	Symmetric bool
}

// sameSet reports whether a and b name the same samples in the same
// order, the identity check the symmetry optimization is gated on.
func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Region computes D[a][b] = hamming(bitmap(a,r), bitmap(b,r)) for every
// pair in rowSamples x colSamples, restricted to the ordinal interval r
// resolves to within chromosome c.
func Region(db *arena.Arena, c arena.ChromosomeRef, iv bitmap.Interval, rowSamples, colSamples []string) (Matrix, error) {
	m := Matrix{RowNames: rowSamples, ColNames: colSamples, Symmetric: sameSet(rowSamples, colSamples)}
	m.D = make([][]uint64, len(rowSamples))
	for i := range m.D {
		m.D[i] = make([]uint64, len(colSamples))
	}

	rowBitmaps, err := sliceAll(db, c, iv, rowSamples)
	if err != nil {
		return Matrix{}, err
	}
	var colBitmaps []*bitmap.Bitmap
	if m.Symmetric {
		colBitmaps = rowBitmaps
	} else {
		colBitmaps, err = sliceAll(db, c, iv, colSamples)
		if err != nil {
			return Matrix{}, err
		}
	}

	lim := &rowLimiter{Max: maxConcurrentRows}
	for i := range rowSamples {
		i := i
		lim.Acquire()
		go func() {
			defer lim.Release()
			jStart := 0
			if m.Symmetric {
				jStart = i
			}
			for j := jStart; j < len(colSamples); j++ {
				if m.Symmetric && i == j {
					m.D[i][j] = 0
					continue
				}
				d := bitmap.Distance(rowBitmaps[i], colBitmaps[j])
				m.D[i][j] = d
				if m.Symmetric {
					m.D[j][i] = d
				}
			}
		}()
	}
	if err := lim.Wait(); err != nil {
		return Matrix{}, err
	}
	return m, nil
}

func sliceAll(db *arena.Arena, c arena.ChromosomeRef, iv bitmap.Interval, samples []string) ([]*bitmap.Bitmap, error) {
	out := make([]*bitmap.Bitmap, len(samples))
	for i, name := range samples {
		g, ok := db.GenomeByName(name)
		if !ok {
			out[i] = bitmap.New()
			continue
		}
		bm, ok := db.GetBitmap(g, c)
		if !ok || region.IsEmpty(iv) {
			out[i] = bitmap.New()
			continue
		}
		sliced, err := bm.Region(iv)
		if err != nil {
			return nil, err
		}
		out[i] = sliced
	}
	return out, nil
}

// Binned computes one Matrix per bin, reusing the row/col sample
// resolution but re-slicing each sample's bitmap per bin interval.
func Binned(db *arena.Arena, c arena.ChromosomeRef, bins []bitmap.Interval, rowSamples, colSamples []string) ([]Matrix, error) {
	out := make([]Matrix, len(bins))
	for i, iv := range bins {
		m, err := Region(db, c, iv, rowSamples, colSamples)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}
