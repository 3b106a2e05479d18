package viz

import (
	"strings"
	"testing"

	"github.com/san-kum/nbforce/internal/ff"
)

func TestEnergyTable(t *testing.T) {
	out := EnergyTable([]ff.PartEnergy{{Name: "pair_ei", Energy: -0.25}, {Name: "ewald_reci", Energy: 0.125}}, -0.125)
	for _, want := range []string{"PART", "pair_ei", "ewald_reci", "-0.25", "0.125", "total", "-0.125"} {
		if !strings.Contains(out, want) {
			t.Errorf("table lacks %q:\n%s", want, out)
		}
	}
}

func TestConvergencePlot(t *testing.T) {
	if ConvergencePlot([]float64{1}, "x") != "" {
		t.Error("single point should not plot")
	}
	out := ConvergencePlot([]float64{-0.4, -0.49, -0.499, -0.5}, "energy vs gmax")
	if !strings.Contains(out, "energy vs gmax") {
		t.Errorf("caption missing:\n%s", out)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil, 4); got != "────" {
		t.Errorf("empty sparkline = %q", got)
	}
	out := Sparkline([]float64{1, 2, 3, 4, 5}, 3)
	if strings.Count(out, "▁")+strings.Count(out, "▂")+strings.Count(out, "▃")+strings.Count(out, "▄")+
		strings.Count(out, "▅")+strings.Count(out, "▆")+strings.Count(out, "▇")+strings.Count(out, "█") != 3 {
		t.Errorf("sparkline %q does not have 3 bars", out)
	}
}

func TestCanvasLineAndDisc(t *testing.T) {
	c := NewCanvas(4, 2)
	pw, ph := c.Pixels()
	if pw != 8 || ph != 8 {
		t.Fatalf("pixels = %dx%d", pw, ph)
	}
	c.DrawLine(0, 0, 7, 7)
	for i := 0; i < 8; i++ {
		if !c.IsSet(i, i) {
			t.Errorf("diagonal pixel %d not set", i)
		}
	}
	c.Clear()
	if c.IsSet(3, 3) {
		t.Error("clear left pixels set")
	}
	c.Disc(4, 4, 1)
	if !c.IsSet(4, 4) || !c.IsSet(5, 4) || c.IsSet(5, 5) {
		t.Error("disc shape wrong")
	}
	c.Set(-1, 100)
}
