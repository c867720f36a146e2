package nestedsampling

// Problem bundles the external collaborators the core engine treats as
// caller-supplied: the ordered per-dimension prior blocks, the
// likelihood, and the metric used by the clusterer. The driver treats a
// Problem as read-only for the lifetime of a run.
type Problem struct {
	Priors     PriorList
	Likelihood Likelihood
	Metric     Metric
}

// Dimensions returns the joint parameter-space dimension D.
func (p Problem) Dimensions() int { return p.Priors.Dimensions() }
