package nestedsampling

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Results is the immutable snapshot a driver run hands to a persistence
// layer: accessors for the posterior sample, evidence, and run
// diagnostics, plus a WriteText method emitting a text file set for
// downstream plotting and analysis.
type Results struct {
	RunID             uuid.UUID
	D                 int
	NLiveInitial      int
	Posterior         []PosteriorPoint
	LogZ              float64
	LogZErr           float64
	InformationGain   float64
	NIterations       int
	ComputationalTime time.Duration
	TerminationKind   string
}

// PosteriorSample returns the parameter vectors of the posterior record,
// in discard order.
func (r *Results) PosteriorSample() [][]float64 {
	out := make([][]float64, len(r.Posterior))
	for i, p := range r.Posterior {
		out[i] = p.Theta
	}
	return out
}

// LogLikelihoodOfPosteriorSample returns the per-sample log-likelihoods.
func (r *Results) LogLikelihoodOfPosteriorSample() []float64 {
	out := make([]float64, len(r.Posterior))
	for i, p := range r.Posterior {
		out[i] = p.LogL
	}
	return out
}

// LogWeightOfPosteriorSample returns the per-sample log weights,
// log(L) + log(dX).
func (r *Results) LogWeightOfPosteriorSample() []float64 {
	out := make([]float64, len(r.Posterior))
	for i, p := range r.Posterior {
		out[i] = p.LogW
	}
	return out
}

// LogEvidence returns logZ.
func (r *Results) LogEvidence() float64 { return r.LogZ }

// LogEvidenceError returns the logZ uncertainty estimate.
func (r *Results) LogEvidenceError() float64 { return r.LogZErr }

// The remaining run diagnostics — information gain, iteration count,
// and computational time — are plain exported fields
// (InformationGain, NIterations, ComputationalTime) rather than methods,
// since Results is an immutable snapshot with no invariant a getter
// would need to guard.

// posteriorProbabilities returns the normalized posterior probability of
// every sample: exp(LogW_i) divided by the sum of exp(LogW) over the full
// posterior record, so the probabilities sum to 1.
func (r *Results) posteriorProbabilities() []float64 {
	probs := make([]float64, len(r.Posterior))
	logNorm := logSumExpSlice(r.LogWeightOfPosteriorSample())
	for i, p := range r.Posterior {
		probs[i] = math.Exp(p.LogW - logNorm)
	}
	return probs
}

// ParameterSummary is one row of the D×6 summary table: mean, median,
// mode, second moment (variance), lower CI, upper CI. CI columns are
// fixed at zero; see DESIGN.md's record of this open question.
type ParameterSummary struct {
	Mean, Median, Mode, Variance, CILower, CIUpper float64
}

// Summarize computes the D×6 parameter summary table from the weighted
// posterior sample.
func (r *Results) Summarize() []ParameterSummary {
	probs := r.posteriorProbabilities()
	modeIdx := 0
	for i, p := range probs {
		if p > probs[modeIdx] {
			modeIdx = i
		}
	}

	summaries := make([]ParameterSummary, r.D)
	for d := 0; d < r.D; d++ {
		values := make([]float64, len(r.Posterior))
		for i, p := range r.Posterior {
			values[i] = p.Theta[d]
		}

		var mean float64
		for i, v := range values {
			mean += probs[i] * v
		}

		var variance float64
		for i, v := range values {
			diff := v - mean
			variance += probs[i] * diff * diff
		}

		summaries[d] = ParameterSummary{
			Mean:     mean,
			Median:   weightedMedian(values, probs),
			Mode:     values[modeIdx],
			Variance: variance,
			CILower:  0,
			CIUpper:  0,
		}
	}
	return summaries
}

// weightedMedian returns the value at which the cumulative weight first
// reaches 0.5.
func weightedMedian(values, weights []float64) float64 {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return values[idx[i]] < values[idx[j]] })

	var cumulative float64
	for _, i := range idx {
		cumulative += weights[i]
		if cumulative >= 0.5 {
			return values[i]
		}
	}
	if n == 0 {
		return 0
	}
	return values[idx[n-1]]
}

// WriteText emits one file per parameter dimension, single-column
// log-likelihood/log-weight/posterior-probability files, a one-line
// evidence-info file, and the D×6 parameter summary, all at scientific
// precision 9. This boundary is
// intentionally plain fmt.Fprintf rather than a serialization library —
// the column layout is a fixed, scientific-notation text format with no
// natural fit in any library the rest of this module depends on; see
// DESIGN.md.
func (r *Results) WriteText(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return newEngineError(KindInvalidConfig, "creating output directory", err)
	}

	for d := 0; d < r.D; d++ {
		path := filepath.Join(dir, fmt.Sprintf("parameter_%d.txt", d))
		if err := writeColumn(path, len(r.Posterior), func(i int) float64 { return r.Posterior[i].Theta[d] }); err != nil {
			return err
		}
	}

	if err := writeColumn(filepath.Join(dir, "loglikelihood.txt"), len(r.Posterior), func(i int) float64 { return r.Posterior[i].LogL }); err != nil {
		return err
	}
	if err := writeColumn(filepath.Join(dir, "logweight.txt"), len(r.Posterior), func(i int) float64 { return r.Posterior[i].LogW }); err != nil {
		return err
	}
	probs := r.posteriorProbabilities()
	if err := writeColumn(filepath.Join(dir, "posteriorprobability.txt"), len(probs), func(i int) float64 { return probs[i] }); err != nil {
		return err
	}

	evidencePath := filepath.Join(dir, "evidence.txt")
	evidenceFile, err := os.Create(evidencePath)
	if err != nil {
		return newEngineError(KindInvalidConfig, "writing evidence file", err)
	}
	defer evidenceFile.Close()
	if _, err := fmt.Fprintf(evidenceFile, "%.9e %.9e %.9e\n", r.LogZ, r.LogZErr, r.InformationGain); err != nil {
		return newEngineError(KindInvalidConfig, "writing evidence file", err)
	}

	summaryPath := filepath.Join(dir, "summary.txt")
	summaryFile, err := os.Create(summaryPath)
	if err != nil {
		return newEngineError(KindInvalidConfig, "writing summary file", err)
	}
	defer summaryFile.Close()
	for _, s := range r.Summarize() {
		if _, err := fmt.Fprintf(summaryFile, "%.9e %.9e %.9e %.9e %.9e %.9e\n",
			s.Mean, s.Median, s.Mode, s.Variance, s.CILower, s.CIUpper); err != nil {
			return newEngineError(KindInvalidConfig, "writing summary file", err)
		}
	}
	return nil
}

func writeColumn(path string, n int, at func(int) float64) error {
	f, err := os.Create(path)
	if err != nil {
		return newEngineError(KindInvalidConfig, "writing output file", err)
	}
	defer f.Close()
	for i := 0; i < n; i++ {
		if _, err := fmt.Fprintf(f, "%.9e\n", at(i)); err != nil {
			return newEngineError(KindInvalidConfig, "writing output file", err)
		}
	}
	return nil
}
