package dist

import (
	"encoding/json"
	"fmt"
	"io"
)

// WritePhylip renders a symmetric Matrix in the standard phylip square
// distance format: a leading count line, then one row per sample of
// name plus tab-separated distances.
func WritePhylip(w io.Writer, m Matrix) error {
	if _, err := fmt.Fprintf(w, "%d\n", len(m.RowNames)); err != nil {
		return err
	}
	for i, name := range m.RowNames {
		fmt.Fprintf(w, "%-10s", name)
		for j := range m.ColNames {
			fmt.Fprintf(w, "\t%d", m.D[i][j])
		}
		fmt.Fprintln(w)
	}
	return nil
}

// jsonMatrix is the wire shape for JSON output: required for
// asymmetric matrices and for bin matrices, per spec §4.6.
type jsonMatrix struct {
	Rows []string   `json:"rows"`
	Cols []string   `json:"cols"`
	D    [][]uint64 `json:"distances"`
}

// WriteJSON renders a single Matrix as JSON.
func WriteJSON(w io.Writer, m Matrix) error {
	enc := json.NewEncoder(w)
	return enc.Encode(jsonMatrix{Rows: m.RowNames, Cols: m.ColNames, D: m.D})
}

// WriteJSONBins renders a slice of per-bin Matrix values as a JSON
// array, one element per bin in order.
func WriteJSONBins(w io.Writer, ms []Matrix) error {
	out := make([]jsonMatrix, len(ms))
	for i, m := range ms {
		out[i] = jsonMatrix{Rows: m.RowNames, Cols: m.ColNames, D: m.D}
	}
	enc := json.NewEncoder(w)
	return enc.Encode(out)
}
