// Package nestedsampling implements Bayesian evidence computation and
// posterior sampling via nested sampling with multi-ellipsoidal
// constrained prior sampling and k-means live-point clustering.
//
// The engine is a value with a construct -> run -> query lifecycle: build a
// NestedSampler from a Config and a Problem (priors, likelihood, metric),
// call Run, then read the evidence and posterior sample off the returned
// Results.
package nestedsampling
