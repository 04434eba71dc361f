// Package quality screens candidate trajectories for numerical health.
// A trajectory is rejected when it diverged (NaN/Inf or huge entries) or
// degenerated (a large share of entries collapsed onto zero).
package quality

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Default thresholds. Empirically chosen; kept as-is rather than derived.
const (
	DefaultMaxMagnitude = 1e10
	DefaultAbsZeroTol   = 1e-10
	DefaultRelZeroTol   = 1e-12
	DefaultNearZeroTol  = 1e-8
	DefaultMaxZeroFrac  = 0.10
)

// Check holds the acceptance thresholds. Every entry must be finite and
// below MaxMagnitude in absolute value, and for each of the three zero
// tolerances fewer than MaxZeroFrac of all entries may sit within that
// tolerance of zero.
type Check struct {
	MaxMagnitude float64
	AbsZeroTol   float64
	RelZeroTol   float64
	NearZeroTol  float64
	MaxZeroFrac  float64
}

func DefaultCheck() Check {
	return Check{
		MaxMagnitude: DefaultMaxMagnitude,
		AbsZeroTol:   DefaultAbsZeroTol,
		RelZeroTol:   DefaultRelZeroTol,
		NearZeroTol:  DefaultNearZeroTol,
		MaxZeroFrac:  DefaultMaxZeroFrac,
	}
}

// Evaluate returns an empty string for a healthy trajectory, otherwise a
// short human-readable rejection reason.
func (c Check) Evaluate(traj *mat.Dense) string {
	rows, cols := traj.Dims()
	total := rows * cols
	if total == 0 {
		return "empty trajectory"
	}

	var nAbs, nRel, nNear int
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := traj.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Sprintf("non-finite entry at row %d col %d", i, j)
			}
			a := math.Abs(v)
			if a > c.MaxMagnitude {
				return fmt.Sprintf("entry %g exceeds magnitude bound %g", v, c.MaxMagnitude)
			}
			if a < c.AbsZeroTol {
				nAbs++
			}
			if a < c.RelZeroTol {
				nRel++
			}
			if a < c.NearZeroTol {
				nNear++
			}
		}
	}

	if float64(nAbs)/float64(total) >= c.MaxZeroFrac {
		return fmt.Sprintf("%d/%d entries within %g of zero", nAbs, total, c.AbsZeroTol)
	}
	if float64(nRel)/float64(total) >= c.MaxZeroFrac {
		return fmt.Sprintf("%d/%d entries within %g of zero", nRel, total, c.RelZeroTol)
	}
	if float64(nNear)/float64(total) >= c.MaxZeroFrac {
		return fmt.Sprintf("%d/%d entries within %g of zero", nNear, total, c.NearZeroTol)
	}
	return ""
}

// Accept reports whether the trajectory passes all checks.
func (c Check) Accept(traj *mat.Dense) bool {
	return c.Evaluate(traj) == ""
}
