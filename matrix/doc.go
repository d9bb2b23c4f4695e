// Package matrix is the dense linear-algebra kernel behind the least-squares
// solver.
//
// The matrix package provides:
//
//   - Dense, a row-major r×c matrix used for Jacobians and reference checks.
//   - SymPacked, an N×N symmetric matrix stored as N(N+1)/2 elements in
//     packed lower-triangular order, with automatic (row,col) reflection.
//   - Cholesky (A = L·Lᵀ) and LDLT (A = L·D·Lᵀ) factorizations of a SymPacked,
//     each with triangular Solve and Inverse.
//   - WeightedGram / WeightedTransposeMatVec to assemble the normal equations
//     JᵀWJ and JᵀWr directly into packed storage.
//
// Every kernel is deterministic (fixed loop orders, no pivoting) and reports
// failure through sentinel errors instead of panicking: a factorization of a
// damped Hessian is not guaranteed to exist, and callers must be able to
// recover from that at the granularity of one fit.
//
// See example_test.go for usage patterns.
package matrix
