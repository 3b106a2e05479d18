package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/nbforce/internal/ff"
)

// EnergyTable renders per-part energies and their total.
func EnergyTable(parts []ff.PartEnergy, total float64) string {
	var b strings.Builder
	b.WriteString(tableHeader.Render(fmt.Sprintf("%-16s%22s", "PART", "ENERGY")) + "\n")
	for _, p := range parts {
		b.WriteString(tableName.Render(p.Name) + tableValue.Render(fmt.Sprintf("%.12g", p.Energy)) + "\n")
	}
	b.WriteString(tableName.Render("total") + tableTotal.Render(fmt.Sprintf("%.12g", total)) + "\n")
	return b.String()
}

// ConvergencePlot draws a series, typically an energy against a cutoff.
func ConvergencePlot(values []float64, caption string) string {
	if len(values) < 2 {
		return ""
	}
	return graphStyle.Render(asciigraph.Plot(values, asciigraph.Height(10), asciigraph.Width(60), asciigraph.Caption(caption)))
}
