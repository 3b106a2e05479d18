package ewald

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/nbforce/internal/cell"
	"github.com/san-kum/nbforce/internal/pes"
	"github.com/san-kum/nbforce/internal/scaling"
)

func testScalings() scaling.Table {
	return scaling.Table{
		{{Other: 1, Scale: 0}, {Other: 2, Scale: 0.5}},
		{{Other: 0, Scale: 0}, {Other: 3, Scale: 0.2}},
		{{Other: 0, Scale: 0.5}},
		{{Other: 1, Scale: 0.2}},
	}
}

func correctionTotal(pos, charges []float64, c *cell.Cell, alpha float64, table scaling.Table, gpos, vtens []float64) (float64, error) {
	total := 0.0
	for i := range charges {
		e, err := Correction(pos, i, charges, c, alpha, table[i], gpos, vtens)
		if err != nil {
			return 0, err
		}
		total += e
	}
	return total, nil
}

func TestCorrectionSelfEnergySingleAtom(t *testing.T) {
	c, _ := cell.Cubic(10)
	q, alpha := 1.5, 0.3
	e, err := Correction([]float64{1, 2, 3}, 0, []float64{q}, c, alpha, nil, nil, nil)
	if err != nil {
		t.Fatalf("correction failed: %v", err)
	}
	expected := -alpha / math.SqrtPi * q * q
	if math.Abs(e-expected) > 1e-14 {
		t.Errorf("expected %.15f, got %.15f", expected, e)
	}
}

func TestCorrectionGradientFiniteDifference(t *testing.T) {
	pos, charges, c := skewedSystem(t)
	table := testScalings()
	alpha := 0.45

	gpos := make([]float64, len(pos))
	if _, err := correctionTotal(pos, charges, c, alpha, table, gpos, nil); err != nil {
		t.Fatalf("correction failed: %v", err)
	}

	num := numGradient(pos, func(p []float64) float64 {
		e, _ := correctionTotal(p, charges, c, alpha, table, nil, nil)
		return e
	})
	assertClose(t, "gpos", gpos, num, 1e-6)
}

func TestCorrectionVirialFiniteStrain(t *testing.T) {
	pos, charges, c := skewedSystem(t)
	table := testScalings()
	alpha := 0.45

	vtens := make([]float64, 9)
	if _, err := correctionTotal(pos, charges, c, alpha, table, nil, vtens); err != nil {
		t.Fatalf("correction failed: %v", err)
	}

	num := numVirial(t, pos, c, func(p []float64, dc *cell.Cell) float64 {
		e, _ := correctionTotal(p, charges, dc, alpha, table, nil, nil)
		return e
	})
	assertClose(t, "vtens", vtens, num, 1e-6)
}

func TestCorrectionNewtonThirdLaw(t *testing.T) {
	pos, charges, c := skewedSystem(t)
	row := []scaling.Entry{{Other: 0, Scale: 0.3}}
	gpos := make([]float64, len(pos))

	if _, err := Correction(pos, 2, charges, c, 0.4, row, gpos, nil); err != nil {
		t.Fatalf("correction failed: %v", err)
	}
	for k := 0; k < 3; k++ {
		if gpos[6+k] != -gpos[k] {
			t.Errorf("component %d: center %g, other %g", k, gpos[6+k], gpos[k])
		}
		if gpos[3+k] != 0 || gpos[9+k] != 0 {
			t.Errorf("component %d: uninvolved atoms received gradient", k)
		}
	}
}

func TestCorrectionScaleOneOnlySelf(t *testing.T) {
	pos, charges, c := skewedSystem(t)
	alpha := 0.4
	table := scaling.Table{
		{{Other: 1, Scale: 1}, {Other: 3, Scale: 1}},
		{{Other: 0, Scale: 1}},
		{},
		{{Other: 0, Scale: 1}},
	}

	gpos := make([]float64, len(pos))
	vtens := make([]float64, 9)
	total, err := correctionTotal(pos, charges, c, alpha, table, gpos, vtens)
	if err != nil {
		t.Fatalf("correction failed: %v", err)
	}

	self := 0.0
	for _, q := range charges {
		self -= alpha / math.SqrtPi * q * q
	}
	if math.Abs(total-self) > 1e-14 {
		t.Errorf("expected only self energy %.15f, got %.15f", self, total)
	}
	for i, g := range gpos {
		if g != 0 {
			t.Errorf("gpos[%d] = %g, expected 0", i, g)
		}
	}
	for i, v := range vtens {
		if v != 0 {
			t.Errorf("vtens[%d] = %g, expected 0", i, v)
		}
	}
}

func TestCorrectionSkipsHigherPartners(t *testing.T) {
	pos, charges, c := skewedSystem(t)
	alpha := 0.4
	row := []scaling.Entry{{Other: 3, Scale: 0}}

	e, err := Correction(pos, 1, charges, c, alpha, row, nil, nil)
	if err != nil {
		t.Fatalf("correction failed: %v", err)
	}
	self := -alpha / math.SqrtPi * charges[1] * charges[1]
	if e != self {
		t.Errorf("expected partner with higher index to be skipped, got %g vs %g", e, self)
	}
}

func TestCorrectionErrorsLeaveBuffers(t *testing.T) {
	c, _ := cell.Cubic(10)
	pos := []float64{1, 1, 1, 1, 1, 1, 3, 3, 3}
	charges := []float64{1, -1, 0.5}

	tests := []struct {
		name   string
		center int
		alpha  float64
		row    []scaling.Entry
		want   error
	}{
		{"zero alpha", 2, 0, nil, pes.ErrInvalidParameter},
		{"center out of range", 3, 0.3, nil, pes.ErrDimensionMismatch},
		{"coincident pair", 1, 0.3, []scaling.Entry{{Other: 0, Scale: 0}}, pes.ErrDomainViolation},
		{"scale above one", 2, 0.3, []scaling.Entry{{Other: 0, Scale: 2}}, pes.ErrInvalidParameter},
		{"negative scale", 2, 0.3, []scaling.Entry{{Other: 1, Scale: -0.5}}, pes.ErrInvalidParameter},
		{"scale of a higher partner", 0, 0.3, []scaling.Entry{{Other: 2, Scale: math.NaN()}}, pes.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gpos := make([]float64, 9)
			vtens := make([]float64, 9)
			_, err := Correction(pos, tt.center, charges, c, tt.alpha, tt.row, gpos, vtens)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			for i := range gpos {
				if gpos[i] != 0 || vtens[i] != 0 {
					t.Fatalf("buffers mutated at %d", i)
				}
			}
		})
	}
}

func TestNeutralizing(t *testing.T) {
	vtens := make([]float64, 9)
	e, err := Neutralizing([]float64{1, 0.5}, 1000, 0.3, vtens)
	if err != nil {
		t.Fatalf("neutralizing failed: %v", err)
	}
	expected := 2.25 * math.Pi / (2 * 1000 * 0.09)
	if math.Abs(e-expected) > 1e-14 {
		t.Errorf("expected %g, got %g", expected, e)
	}
	if vtens[0] != -e || vtens[4] != -e || vtens[8] != -e || vtens[1] != 0 {
		t.Errorf("unexpected virial %v", vtens)
	}

	e, _ = Neutralizing([]float64{1, -1}, 1000, 0.3, nil)
	if e != 0 {
		t.Errorf("expected zero for a neutral cell, got %g", e)
	}
}
