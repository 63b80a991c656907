package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	"math"
	"os"
	"sort"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// RunResult holds one workload run using the bench schema.
type RunResult struct {
	Workload      string  `json:"workload"`
	Container     string  `json:"container"`
	Mode          string  `json:"mode"`
	Elements      int     `json:"elements"`
	Ops           int64   `json:"ops"`
	ActualElapsed string  `json:"actual_elapsed"`
	Throughput    float64 `json:"throughput_ops_sec"`
	Timestamp     int64   `json:"timestamp"`
	GoVersion     string  `json:"go_version"`
}

// SystemInfo holds system information.
type SystemInfo struct {
	NumCPU      int     `json:"num_cpu"`
	CPUModel    string  `json:"cpu_model,omitempty"`
	CPUSpeedMHz float64 `json:"cpu_speed_mhz,omitempty"`
	GOARCH      string  `json:"go_arch"`
	TotalMemory uint64  `json:"total_memory_bytes,omitempty"`
}

// FullReport represents a complete bench session.
type FullReport struct {
	SessionID   string      `json:"session_id"`
	SessionTime string      `json:"session_time"`
	SystemInfo  SystemInfo  `json:"system_info"`
	Runs        []RunResult `json:"runs"`
}

// workloadStats holds "5%-avg-min", median, and "5%-avg-max" for one
// workload category on the X axis.
type workloadStats struct {
	x      float64 // category index, plus the per-series offset
	name   string  // workload the values belong to
	min    float64 // average of bottom 5%
	median float64
	max    float64 // average of top 5%
}

// statsPoints implements XYer and YErrorer for workloadStats, so we can
// plot lines + error bars.
type statsPoints []workloadStats

func (s statsPoints) Len() int                { return len(s) }
func (s statsPoints) XY(i int) (x, y float64) { return s[i].x, s[i].median }
func (s statsPoints) YError(i int) (low, high float64) {
	low = s[i].median - s[i].min
	high = s[i].max - s[i].median
	return low, high
}

// categoryTicks implements a categorical X-axis: 0,1,2,... => workload names.
type categoryTicks struct {
	positions []float64
	labels    []string
}

func (ct categoryTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for i, pos := range ct.positions {
		if pos >= min && pos <= max {
			ticks = append(ticks, plot.Tick{Value: pos, Label: ct.labels[i]})
		}
	}
	return ticks
}

func main() {
	jsonFile := flag.String("jsonfile", "test-results.json", "Path to JSON file containing bench sessions")
	outputPrefix := flag.String("out", "benchmark_graph", "Output graph image filename prefix")
	flag.Parse()

	data, err := os.ReadFile(*jsonFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading JSON file: %v\n", err)
		os.Exit(1)
	}

	var sessions []FullReport
	if err := json.Unmarshal(data, &sessions); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshalling JSON: %v\n", err)
		os.Exit(1)
	}

	// Group data by element count -> mode -> workload -> ns/op values.
	pointsByElems := make(map[int]map[string]map[string][]float64)

	for _, session := range sessions {
		for _, run := range session.Runs {
			dur, err := time.ParseDuration(run.ActualElapsed)
			if err != nil || run.Ops == 0 {
				continue
			}
			nsPerOp := float64(dur.Nanoseconds()) / float64(run.Ops)

			if _, ok := pointsByElems[run.Elements]; !ok {
				pointsByElems[run.Elements] = make(map[string]map[string][]float64)
			}
			modeMap := pointsByElems[run.Elements]
			if _, ok := modeMap[run.Mode]; !ok {
				modeMap[run.Mode] = make(map[string][]float64)
			}
			modeMap[run.Mode][run.Workload] = append(modeMap[run.Mode][run.Workload], nsPerOp)
		}
	}

	// For each element count, produce a plot.
	for elems, modeMap := range pointsByElems {
		p := plot.New()
		p.Title.Text = fmt.Sprintf("Workloads (5%%-avg-min / Median / 5%%-avg-max) at %d elements", elems)
		p.X.Label.Text = "Workload"
		p.Y.Label.Text = "Time per Op (ns) [log scale]"
		p.Y.Scale = plot.LinearScale{}

		// Dark theme.
		p.BackgroundColor = color.RGBA{R: 30, G: 30, B: 30, A: 255}
		white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
		p.Title.TextStyle.Color = white
		p.X.Label.TextStyle.Color = white
		p.Y.Label.TextStyle.Color = white
		p.X.Color = white
		p.Y.Color = white
		p.X.Tick.Label.Color = white
		p.Y.Tick.Label.Color = white
		p.Legend.Top = true
		p.Legend.Left = true
		p.Legend.TextStyle.Color = white

		p.Y.Tick.Marker = plot.TickerFunc(func(min, max float64) []plot.Tick {
			// Roughly one tick per 30px on a 9 inch tall render.
			const pxHeight = 648.0
			const pxSpacing = 30.0
			nTicks := pxHeight / pxSpacing

			// Step from log10(min) to log10(max); clamp so log10 stays valid.
			if min <= 0 {
				min = 1e-9
			}
			start := math.Log10(min)
			end := math.Log10(max)
			step := (end - start) / nTicks

			var ticks []plot.Tick
			for i := 0.0; i <= nTicks; i++ {
				logVal := start + i*step
				y := math.Pow(10, logVal)
				ticks = append(ticks, plot.Tick{
					Value: y,
					Label: formatNs(y),
				})
			}
			return ticks
		})

		p.Add(plotter.NewGrid())

		// Build the union of workload names for this element count.
		workloadSet := make(map[string]struct{})
		for _, workloadData := range modeMap {
			for name := range workloadData {
				workloadSet[name] = struct{}{}
			}
		}
		var workloadNames []string
		for name := range workloadSet {
			workloadNames = append(workloadNames, name)
		}
		sort.Strings(workloadNames)

		// Map workload name => category index.
		nameMapping := make(map[string]float64)
		var positions []float64
		var labels []string
		for i, name := range workloadNames {
			nameMapping[name] = float64(i)
			positions = append(positions, float64(i))
			labels = append(labels, name)
		}
		p.X.Tick.Marker = categoryTicks{positions: positions, labels: labels}

		// Sort modes alphabetically for consistent legend ordering.
		var modeNames []string
		for mode := range modeMap {
			modeNames = append(modeNames, mode)
		}
		sort.Strings(modeNames)

		colors := plotutil.SoftColors
		shapes := []draw.GlyphDrawer{
			draw.CircleGlyph{},
			draw.SquareGlyph{},
			draw.TriangleGlyph{},
			draw.CrossGlyph{},
			draw.PlusGlyph{},
		}

		// Slight offset so the modes are visually separated per workload.
		offsetRange := 0.4
		offsetStep := offsetRange / float64(len(modeNames))
		startOffset := -offsetRange/2 + offsetStep/2

		for i, mode := range modeNames {
			stats := buildStats(modeMap[mode])
			if len(stats) == 0 {
				continue
			}
			for j := range stats {
				baseX := nameMapping[stats[j].name]
				stats[j].x = baseX + startOffset + float64(i)*offsetStep
			}
			sort.Slice(stats, func(a, b int) bool {
				return stats[a].x < stats[b].x
			})
			sp := statsPoints(stats)

			line, err := plotter.NewLine(sp)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error creating line: %v\n", err)
				continue
			}
			line.Color = colors[i%len(colors)]

			points, err := plotter.NewScatter(sp)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error creating scatter: %v\n", err)
				continue
			}
			points.GlyphStyle.Radius = vg.Points(5)
			points.Color = colors[i%len(colors)]
			points.Shape = shapes[i%len(shapes)]

			yErrBars, err := plotter.NewYErrorBars(sp)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error creating error bars: %v\n", err)
				continue
			}
			yErrBars.Color = colors[i%len(colors)]

			p.Add(line, points, yErrBars)
			p.Legend.Add(mode, line, points)
		}

		filename := fmt.Sprintf("%s_%d.png", *outputPrefix, elems)
		if err := p.Save(12*vg.Inch, 9*vg.Inch, filename); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving plot for %d elements: %v\n", elems, err)
			continue
		}
		fmt.Printf("Graph for %d elements saved to %s\n", elems, filename)
	}
}

// buildStats computes "average of bottom 5%", median, and "average of top 5%".
func buildStats(workloadMap map[string][]float64) []workloadStats {
	var out []workloadStats
	for name, vals := range workloadMap {
		if len(vals) == 0 {
			continue
		}
		sort.Float64s(vals)
		min5 := averageOfRange(vals, 0.0, 0.05)
		max5 := averageOfRange(vals, 0.95, 1.0)
		med := median(vals)

		out = append(out, workloadStats{
			name:   name,
			min:    min5,
			median: med,
			max:    max5,
		})
	}
	return out
}

// averageOfRange returns the average of sortedVals in [startFrac, endFrac] of
// its length. E.g. averageOfRange(vals, 0, 0.05) is the average of the bottom 5%.
func averageOfRange(sortedVals []float64, startFrac, endFrac float64) float64 {
	n := len(sortedVals)
	if n == 0 {
		return 0
	}
	startIndex := int(float64(n) * startFrac)
	endIndex := int(float64(n) * endFrac)
	if startIndex < 0 {
		startIndex = 0
	}
	if endIndex > n {
		endIndex = n
	}
	if startIndex >= endIndex {
		// fallback to median if 5% slice is too small
		return median(sortedVals)
	}
	sum := 0.0
	for i := startIndex; i < endIndex; i++ {
		sum += sortedVals[i]
	}
	return sum / float64(endIndex-startIndex)
}

func median(sorted []float64) float64 {
	n := len(sorted)
	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return 0.5 * (sorted[mid-1] + sorted[mid])
}

// formatNs nicely formats a nanoseconds value in ns, µs, ms, or s.
func formatNs(ns float64) string {
	switch {
	case ns < 1e3:
		return fmt.Sprintf("%.0fns", ns)
	case ns < 1e6:
		return fmt.Sprintf("%.1fµs", ns/1e3)
	case ns < 1e9:
		return fmt.Sprintf("%.1fms", ns/1e6)
	default:
		return fmt.Sprintf("%.2fs", ns/1e9)
	}
}
