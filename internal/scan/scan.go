// Package scan evaluates a force field over a range of one parameter,
// building an independent force field per value and running them
// concurrently.
package scan

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/nbforce/internal/config"
	"github.com/san-kum/nbforce/internal/ff"
)

// Setter applies one parameter value to a configuration copy.
type Setter func(cfg *config.Config, v float64) error

// Params are the setters known by name.
var Params = map[string]Setter{
	"gmax":  setGMax,
	"alpha": setAlpha,
	"rcut":  setRcut,
}

func setGMax(cfg *config.Config, v float64) error {
	n := int(v)
	if float64(n) != v || n < 0 {
		return fmt.Errorf("scan: gmax must be a non-negative integer, got %g", v)
	}
	cfg.Ewald.GMax = []int{n, n, n}
	return nil
}

func setAlpha(cfg *config.Config, v float64) error {
	cfg.Ewald.Alpha = v
	return nil
}

func setRcut(cfg *config.Config, v float64) error {
	cfg.Pair.Rcut = v
	return nil
}

// ParamNames returns the names in Params, sorted.
func ParamNames() []string {
	names := make([]string, 0, len(Params))
	for name := range Params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Point is the energy at one parameter value.
type Point struct {
	Value float64
	Total float64
	Parts []ff.PartEnergy
}

// Energy returns the named part's energy, 0 if absent.
func (p Point) Energy(part string) float64 {
	for _, pe := range p.Parts {
		if pe.Name == part {
			return pe.Energy
		}
	}
	return 0
}

// Run evaluates base with each value applied by set. At most workers force
// fields are evaluated at once; workers <= 0 uses GOMAXPROCS. Points come
// back in the order of values. The first error cancels the rest.
func Run(ctx context.Context, base *config.Config, set Setter, values []float64, workers int) ([]Point, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	points := make([]Point, len(values))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, v := range values {
		i, v := i, v
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cfg := base.Clone()
			if err := set(cfg, v); err != nil {
				return err
			}
			f, err := ff.Build(cfg)
			if err != nil {
				return fmt.Errorf("scan: value %g: %w", v, err)
			}
			total, err := f.Compute(nil, nil)
			if err != nil {
				return fmt.Errorf("scan: value %g: %w", v, err)
			}
			points[i] = Point{Value: v, Total: total, Parts: f.Energies()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}

// Converged returns the index of the first point from which every later
// total lies within tol of the last one. ok is false for fewer than two
// points.
func Converged(points []Point, tol float64) (idx int, ok bool) {
	if len(points) < 2 {
		return 0, false
	}
	last := points[len(points)-1].Total
	idx = len(points) - 1
	for i := len(points) - 2; i >= 0; i-- {
		if math.Abs(points[i].Total-last) > tol {
			break
		}
		idx = i
	}
	return idx, true
}

// Spread is the difference between the largest and the smallest total.
func Spread(points []Point) float64 {
	if len(points) == 0 {
		return 0
	}
	lo, hi := points[0].Total, points[0].Total
	for _, p := range points {
		lo = math.Min(lo, p.Total)
		hi = math.Max(hi, p.Total)
	}
	return hi - lo
}

// Totals returns the total energy of each point.
func Totals(points []Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Total
	}
	return out
}
