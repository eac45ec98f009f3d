package viz

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/gravkern/internal/bench"
)

// RenderResult writes a styled summary of one run.
func RenderResult(w io.Writer, mode string, res *bench.Result) {
	fmt.Fprintln(w, HeaderStyle.Render(fmt.Sprintf("%s · %s · %s precision", mode, res.Strategy, res.Precision)))
	fmt.Fprintln(w, Metric("launch", fmt.Sprintf("n=%d p=%d q=%d", res.Particles, res.TileSize, res.Columns)))
	fmt.Fprintln(w, Metric("kernel", formatStats(res.Kernel)))
	if res.Validated {
		fmt.Fprintln(w, Metric("reference", formatStats(res.Reference)))
		fmt.Fprintln(w, Metric("speedup", fmt.Sprintf("%.2fx", res.Speedup)))
	}
	fmt.Fprintln(w, Metric("throughput", fmt.Sprintf("%.3g interactions/s", res.Throughput)))

	if !res.Validated {
		fmt.Fprintln(w, StatusSkip.Render("SKIP")+" "+Subtle.Render("reference not run"))
		return
	}
	rep := res.Report
	fmt.Fprintf(w, "%s %s\n", Status(rep.Pass), Subtle.Render(fmt.Sprintf("%d/%d mismatching elements", rep.Mismatches, rep.Total)))
	fmt.Fprintln(w, Metric("rms error", fmt.Sprintf("%.3e", rep.ErrorNorm)))
	fmt.Fprintln(w, Metric("max error", fmt.Sprintf("%.3e", rep.MaxAbsError)))
	fmt.Fprintln(w, Metric("relative", fmt.Sprintf("%.3e", rep.RelativeNorm)))
	fmt.Fprintln(w, Metric("tolerance", fmt.Sprintf("%g eps (eps=%.3g)", rep.Factor, rep.Epsilon)))
}

func formatStats(s bench.Stats) string {
	if s.Samples == 0 {
		return "-"
	}
	return fmt.Sprintf("mean %v ± %v, min %v (%d runs)", s.Mean, s.StdDev, s.Min, s.Samples)
}

// SweepTable writes one row per sweep point.
func SweepTable(w io.Writer, points []bench.Point) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TILE\tKERNEL\tREFERENCE\tSPEEDUP\tINTERACTIONS/S\tCHECK")
	for _, p := range points {
		if p.Err != nil {
			fmt.Fprintf(tw, "%d\t-\t-\t-\t-\t%s\n", p.TileSize, p.Err)
			continue
		}
		r := p.Result
		check := "skipped"
		if r.Validated {
			check = r.Report.String()
		}
		fmt.Fprintf(tw, "%d\t%v\t%v\t%.2fx\t%.3g\t%s\n",
			p.TileSize, r.Kernel.Mean, r.Reference.Mean, r.Speedup, r.Throughput, check)
	}
	return tw.Flush()
}

// SpeedupPlot plots speedup over the valid points of a sweep in tile order.
func SpeedupPlot(points []bench.Point) string {
	data := make([]float64, 0, len(points))
	tiles := make([]string, 0, len(points))
	for _, p := range points {
		if p.Err != nil || p.Result == nil {
			continue
		}
		data = append(data, p.Result.Speedup)
		tiles = append(tiles, fmt.Sprint(p.TileSize))
	}
	if len(data) < 2 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption("speedup vs tile size ("+strings.Join(tiles, ", ")+")"),
	)
}
