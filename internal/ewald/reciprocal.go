package ewald

import (
	"fmt"
	"math"

	"github.com/san-kum/nbforce/internal/pes"
)

// Reciprocal returns the reciprocal-space Ewald energy.
//
// gvecs holds the reciprocal lattice rows without the 2π factor. Every
// integer triple with |j_d| <= gmax[d] except the origin is visited. When
// gpos is non-nil, work must hold at least 2*natom values; it is scratch
// space and its content is not preserved.
func Reciprocal(pos, charges []float64, gvecs *[9]float64, volume, alpha float64, gmax [3]int, gpos, vtens, work []float64) (float64, error) {
	natom, err := pes.CheckAtoms(pos, charges)
	if err != nil {
		return 0, err
	}
	if err := checkReciprocal(volume, alpha, gmax); err != nil {
		return 0, err
	}
	if err := pes.CheckBuffers(natom, gpos, vtens); err != nil {
		return 0, err
	}
	if gpos != nil && len(work) < 2*natom {
		return 0, fmt.Errorf("%w: work has %d values, want %d", pes.ErrDimensionMismatch, len(work), 2*natom)
	}

	energy := 0.0
	fac1 := 2 * math.Pi / volume
	fac2 := 0.25 / (alpha * alpha)
	var k [3]float64
	for j0 := -gmax[0]; j0 <= gmax[0]; j0++ {
		for j1 := -gmax[1]; j1 <= gmax[1]; j1++ {
			for j2 := -gmax[2]; j2 <= gmax[2]; j2++ {
				if j0 == 0 && j1 == 0 && j2 == 0 {
					continue
				}
				for d := 0; d < 3; d++ {
					k[d] = 2 * math.Pi * (float64(j0)*gvecs[d] + float64(j1)*gvecs[3+d] + float64(j2)*gvecs[6+d])
				}
				ksq := k[0]*k[0] + k[1]*k[1] + k[2]*k[2]

				cosfac, sinfac := 0.0, 0.0
				for i := 0; i < natom; i++ {
					x := k[0]*pos[3*i] + k[1]*pos[3*i+1] + k[2]*pos[3*i+2]
					s, co := math.Sincos(x)
					c := charges[i] * co
					sn := charges[i] * s
					cosfac += c
					sinfac += sn
					if gpos != nil {
						work[2*i] = 2 * c
						work[2*i+1] = -2 * sn
					}
				}

				c := fac1 * math.Exp(-ksq*fac2) / ksq
				sf := cosfac*cosfac + sinfac*sinfac
				energy += c * sf

				if gpos != nil {
					for i := 0; i < natom; i++ {
						x := c * (cosfac*work[2*i+1] + sinfac*work[2*i])
						gpos[3*i] += k[0] * x
						gpos[3*i+1] += k[1] * x
						gpos[3*i+2] += k[2] * x
					}
				}
				if vtens != nil {
					w := 2 * (1/ksq + fac2)
					for a := 0; a < 3; a++ {
						for b := 0; b < 3; b++ {
							v := w * k[a] * k[b]
							if a == b {
								v -= 1
							}
							vtens[3*a+b] += c * sf * v
						}
					}
				}
			}
		}
	}
	return energy, nil
}

func checkReciprocal(volume, alpha float64, gmax [3]int) error {
	if alpha <= 0 || math.IsNaN(alpha) {
		return pes.InvalidParameter("alpha", alpha)
	}
	if volume <= 0 || math.IsNaN(volume) {
		return pes.InvalidParameter("volume", volume)
	}
	for d, g := range gmax {
		if g < 0 {
			return pes.InvalidParameter(fmt.Sprintf("gmax[%d]", d), float64(g))
		}
	}
	return nil
}

// ReciprocalPart evaluates Reciprocal with a work buffer allocated once.
type ReciprocalPart struct {
	Alpha float64
	GMax  [3]int
	work  []float64
}

// NewReciprocalPart validates alpha and gmax and sizes the workspace for natom atoms.
func NewReciprocalPart(natom int, alpha float64, gmax [3]int) (*ReciprocalPart, error) {
	if err := checkReciprocal(1, alpha, gmax); err != nil {
		return nil, err
	}
	return &ReciprocalPart{Alpha: alpha, GMax: gmax, work: make([]float64, 2*natom)}, nil
}

// Compute evaluates the reciprocal energy for the given configuration.
func (p *ReciprocalPart) Compute(pos, charges []float64, gvecs *[9]float64, volume float64, gpos, vtens []float64) (float64, error) {
	if need := 2 * (len(pos) / 3); len(p.work) < need {
		p.work = make([]float64, need)
	}
	return Reciprocal(pos, charges, gvecs, volume, p.Alpha, p.GMax, gpos, vtens, p.work)
}
