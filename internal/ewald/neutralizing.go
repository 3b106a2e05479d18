package ewald

import (
	"math"

	"github.com/san-kum/nbforce/internal/pes"
)

// Neutralizing returns the energy of a charged cell in a uniform
// compensating background, pi*Q^2/(2*V*alpha^2). It is zero for neutral
// systems and contributes -E to the diagonal of the virial.
func Neutralizing(charges []float64, volume, alpha float64, vtens []float64) (float64, error) {
	if alpha <= 0 || math.IsNaN(alpha) {
		return 0, pes.InvalidParameter("alpha", alpha)
	}
	if volume <= 0 || math.IsNaN(volume) {
		return 0, pes.InvalidParameter("volume", volume)
	}
	if err := pes.CheckBuffers(0, nil, vtens); err != nil {
		return 0, err
	}
	q := 0.0
	for _, qi := range charges {
		q += qi
	}
	energy := q * q * math.Pi / (2 * volume * alpha * alpha)
	if vtens != nil {
		vtens[0] -= energy
		vtens[4] -= energy
		vtens[8] -= energy
	}
	return energy, nil
}
