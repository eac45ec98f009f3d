// Package viz renders run results for the terminal.
//
// Styles are lipgloss; sweep plots come from asciigraph:
//
//	viz.RenderResult(os.Stdout, "check", res)
//	fmt.Println(viz.SpeedupPlot(points))
package viz
