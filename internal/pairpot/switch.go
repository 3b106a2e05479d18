package pairpot

// switch3 is the cubic switching function over [rcut-width, rcut]:
// 1 below the interval, 0 at rcut, with zero slope at both ends.
// It returns the value and its derivative with respect to d.
func switch3(d, rcut, width float64) (float64, float64) {
	if d >= rcut {
		return 0, 0
	}
	t := (rcut - d) / width
	if t >= 1 {
		return 1, 0
	}
	s := t * t * (3 - 2*t)
	ds := -6 * t * (1 - t) / width
	return s, ds
}
