// Package semsim simulates observational data from linear structural
// equation models of the form X = BX + ε, where B is a real coefficient
// matrix that may contain directed cycles (feedback loops). Solving for X
// gives X = (I − B)⁻¹ε, which is well defined whenever the spectral radius
// of B is below 1. The package is intended for generating example datasets
// for causal-discovery methods that allow cyclic structure (CCD, CCI) as
// well as acyclic-only methods (FCI, GES).
package semsim
