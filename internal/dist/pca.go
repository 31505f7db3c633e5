package dist

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Projection is a classical multidimensional-scaling embedding of a
// symmetric distance matrix: one coordinate vector per sample, ordered
// the same as the matrix's RowNames.
type Projection struct {
	Names  []string
	Coords [][]float64 // Coords[i] has length k
}

// MDS projects a symmetric Matrix into k dimensions via classical MDS:
// double-center the squared-distance matrix, then take the top k
// eigenvectors of the resulting Gram matrix scaled by sqrt(eigenvalue).
// This is a population-structure enrichment over the raw matrix, not
// part of the distance computation itself.
func MDS(m Matrix, k int) (Projection, error) {
	n := len(m.RowNames)
	if !m.Symmetric || n == 0 {
		return Projection{}, errEmptyOrAsymmetric
	}
	if k > n {
		k = n
	}

	sq := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			d := float64(m.D[i][j])
			sq.SetSym(i, j, d*d)
		}
	}

	// double-centering: B = -1/2 J Sq J, J = I - (1/n) * ones
	b := mat.NewDense(n, n, nil)
	rowMean := make([]float64, n)
	var grandMean float64
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < n; j++ {
			sum += sq.At(i, j)
		}
		rowMean[i] = sum / float64(n)
		grandMean += sum
	}
	grandMean /= float64(n * n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			b.Set(i, j, -0.5*(sq.At(i, j)-rowMean[i]-rowMean[j]+grandMean))
		}
	}

	bSym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			bSym.SetSym(i, j, b.At(i, j))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(bSym, true); !ok {
		return Projection{}, errEigenFailed
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	type ev struct {
		value float64
		index int
	}
	order := make([]ev, n)
	for i, v := range values {
		order[i] = ev{value: v, index: i}
	}
	sort.Slice(order, func(i, j int) bool { return order[i].value > order[j].value })

	coords := make([][]float64, n)
	for i := range coords {
		coords[i] = make([]float64, k)
	}
	for d := 0; d < k; d++ {
		lambda := order[d].value
		if lambda < 0 {
			lambda = 0
		}
		scale := math.Sqrt(lambda)
		col := order[d].index
		for i := 0; i < n; i++ {
			coords[i][d] = vectors.At(i, col) * scale
		}
	}
	return Projection{Names: m.RowNames, Coords: coords}, nil
}

type distError string

func (e distError) Error() string { return string(e) }

const (
	errEmptyOrAsymmetric = distError("dist: MDS requires a non-empty symmetric matrix")
	errEigenFailed       = distError("dist: eigendecomposition failed to converge")
)
