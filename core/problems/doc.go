// Package problems provides ready-made Problem values for the nested
// sampling engine: the eggbox, two-circles, and one-dimensional Gaussian
// scenarios used to exercise multi-modal posterior recovery,
// multi-cluster live-point partitioning, and evidence computation
// respectively.
package problems
