// Package report turns an experiment.Report into a persisted, human- or
// machine-readable document: a JSON file on disk, or a text summary for a
// terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/vfc-go/mca/pkg/experiment"
)

// Document is the serializable view of one experiment.Report.
type Document struct {
	TrialName         string    `json:"trial_name"`
	Format            string    `json:"format"`
	Op                string    `json:"op"`
	A                 float64   `json:"a"`
	B                 float64   `json:"b"`
	N                 int       `json:"n"`
	Reference         float64   `json:"reference"`
	Mean              float64   `json:"mean"`
	Variance          float64   `json:"variance"`
	StdDev            float64   `json:"stddev"`
	MinDeviation      float64   `json:"min_deviation"`
	MaxDeviation      float64   `json:"max_deviation"`
	PerturbedFraction float64   `json:"perturbed_fraction"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// FromExperiment builds a Document from a finished experiment.Report.
func FromExperiment(r *experiment.Report, generatedAt time.Time) *Document {
	format := "binary32"
	if r.Trial.Format == experiment.Binary64 {
		format = "binary64"
	}
	return &Document{
		TrialName:         r.Trial.Name,
		Format:            format,
		Op:                r.Trial.Op.String(),
		A:                 r.Trial.A,
		B:                 r.Trial.B,
		N:                 r.N,
		Reference:         r.Reference,
		Mean:              r.Mean,
		Variance:          r.Variance,
		StdDev:            r.StdDev,
		MinDeviation:      r.MinDeviation,
		MaxDeviation:      r.MaxDeviation,
		PerturbedFraction: r.PerturbedFraction(),
		GeneratedAt:       generatedAt,
	}
}

// WriteJSON writes d to w as indented JSON.
func (d *Document) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// WriteText writes a short human-readable summary of d to w.
func (d *Document) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"%s  %s(%g, %g)  n=%d\n  mean=%.10g  stddev=%.6g  deviation=[%.6g, %.6g]  perturbed=%.1f%%\n",
		d.TrialName, d.Op, d.A, d.B, d.N,
		d.Mean, d.StdDev, d.MinDeviation, d.MaxDeviation, d.PerturbedFraction*100,
	)
	return err
}
