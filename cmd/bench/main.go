package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/i5heu/GoContainerKit/internal/workload"
	"github.com/i5heu/GoContainerKit/pkg/config"
)

// RunResult holds the outcome of one timed workload run.
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

func main() {
	configPath := flag.String("config", "", "Path to a YAML session config; defaults apply when omitted")
	iterFlag := flag.Int("iter", 0, "Override the configured number of iterations per combination")
	jsonExport := flag.Bool("json", false, "Append the session to test-results.json")
	markdownTable := flag.Bool("markdown-table", false, "Output markdown table from the JSON results file and exit")
	jsonFileForMarkdown := flag.String("jsonfile", "test-results.json", "Path to JSON file for markdown table")
	progressFlag := flag.Bool("progress", false, "Display a progress bar with ETA")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	if *markdownTable {
		if err := outputMarkdownTable(os.Stdout, *jsonFileForMarkdown); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		return
	}

	logCfg := zap.NewProductionConfig()
	if *verbose {
		logCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := logCfg.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error building logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("loading config", zap.Error(err))
	}
	if *iterFlag > 0 {
		cfg.Iterations = *iterFlag
	}

	selected, err := selectWorkloads(cfg.Workloads)
	if err != nil {
		logger.Fatal("selecting workloads", zap.Error(err))
	}
	modes := selectModes(cfg.Modes)

	logger.Debug("session configured",
		zap.Int("iterations", cfg.Iterations),
		zap.Ints("elements", cfg.Elements),
		zap.Int("workloads", len(selected)),
		zap.Int("modes", len(modes)),
		zap.Int64("seed", cfg.Seed))

	totalRuns := len(cfg.Elements) * len(selected) * len(modes) * cfg.Iterations
	var bar *progressbar.ProgressBar
	if *progressFlag {
		bar = progressbar.NewOptions(totalRuns,
			progressbar.OptionSetDescription("bench"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
		)
	}

	session := FullReport{
		SessionID:   uuid.NewString(),
		SessionTime: time.Now().Format(time.RFC3339),
		SystemInfo:  gatherSystemInfo(),
	}

	for _, elems := range cfg.Elements {
		fmt.Printf("\n=============================\n")
		fmt.Printf("Elements = %d\n", elems)
		fmt.Printf("=============================\n")

		for _, w := range selected {
			for _, mode := range modes {
				for iteration := 1; iteration <= cfg.Iterations; iteration++ {
					runtime.GC()
					res, err := workload.Measure(w, elems, mode, cfg.Seed)
					if err != nil {
						logger.Fatal("workload failed",
							zap.String("workload", w.Name),
							zap.String("mode", string(mode)),
							zap.Int("elements", elems),
							zap.Error(err))
					}
					throughput := float64(res.Ops) / res.Elapsed.Seconds()

					fmt.Printf("    %s [%s] => ops=%d, throughput=%.0f ops/s, took=%v\n",
						w.Name, mode, res.Ops, throughput, res.Elapsed)
					if bar != nil {
						bar.Add(1)
					}

					session.Runs = append(session.Runs, RunResult{
						Workload:      w.Name,
						Container:     w.Container,
						Mode:          string(mode),
						Elements:      elems,
						Ops:           res.Ops,
						ActualElapsed: res.Elapsed.String(),
						Throughput:    throughput,
						Timestamp:     time.Now().Unix(),
						GoVersion:     runtime.Version(),
					})
				}
			}
		}
	}

	if *jsonExport {
		const filename = "test-results.json"
		if err := appendSession(filename, session); err != nil {
			logger.Fatal("writing results", zap.Error(err))
		}
		logger.Info("wrote results", zap.String("file", filename), zap.String("session", session.SessionID))
	}
}

func selectWorkloads(names []string) ([]workload.Workload, error) {
	if len(names) == 0 {
		return workload.Catalog(), nil
	}
	selected := make([]workload.Workload, 0, len(names))
	for _, name := range names {
		w, ok := workload.Find(name)
		if !ok {
			return nil, fmt.Errorf("unknown workload %q", name)
		}
		selected = append(selected, w)
	}
	return selected, nil
}

func selectModes(names []string) []workload.Mode {
	if len(names) == 0 {
		return workload.Modes()
	}
	modes := make([]workload.Mode, 0, len(names))
	for _, name := range names {
		modes = append(modes, workload.Mode(name))
	}
	return modes
}

// appendSession adds the session to the JSON results file, keeping the
// sessions that are already there.
func appendSession(filename string, session FullReport) error {
	var previous []FullReport
	if data, err := os.ReadFile(filename); err == nil && len(data) > 0 {
		json.Unmarshal(data, &previous)
	}
	updated := append(previous, session)
	data, err := json.MarshalIndent(updated, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling results: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", filename, err)
	}
	return nil
}

// outputMarkdownTable loads the JSON results file and writes a Markdown
// table of the last session to w.
func outputMarkdownTable(w io.Writer, jsonFile string) error {
	data, err := os.ReadFile(jsonFile)
	if err != nil {
		return fmt.Errorf("reading JSON file %q: %w", jsonFile, err)
	}
	var sessions []FullReport
	if err := json.Unmarshal(data, &sessions); err != nil {
		return fmt.Errorf("unmarshalling JSON: %w", err)
	}
	if len(sessions) == 0 {
		return fmt.Errorf("no sessions found in %q", jsonFile)
	}
	// Use the last session for the table.
	lastSession := sessions[len(sessions)-1]

	type tableRow struct {
		workload   string
		container  string
		mode       string
		elements   int
		features   string
		throughput float64
	}
	var rows []tableRow
	for _, run := range lastSession.Runs {
		var features string
		if meta, ok := workload.Find(run.Workload); ok {
			features = strings.Join(meta.Features, ", ")
		}
		rows = append(rows, tableRow{
			workload:   run.Workload,
			container:  run.Container,
			mode:       run.Mode,
			elements:   run.Elements,
			features:   features,
			throughput: run.Throughput,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].throughput > rows[j].throughput
	})

	fmt.Fprintln(w, "## Last Session Benchmark Summary")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Workload           | Container | Mode          | Elements | Features                    | Throughput (ops/sec) |")
	fmt.Fprintln(w, "|--------------------|-----------|---------------|----------|-----------------------------|----------------------|")
	for _, r := range rows {
		fmt.Fprintf(w, "| %-18s | %-9s | %-13s | %8d | %-27s | %20.0f |\n",
			r.workload, r.container, r.mode, r.elements, r.features, r.throughput)
	}
	return nil
}

// gatherSystemInfo collects basic CPU and memory details.
func gatherSystemInfo() SystemInfo {
	numCPU := runtime.NumCPU()
	goArch := runtime.GOARCH

	var cpuModel string
	var cpuSpeed float64
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		cpuModel = infos[0].ModelName
		cpuSpeed = infos[0].Mhz
	}

	var totalMemory uint64
	if vm, err := mem.VirtualMemory(); err == nil {
		totalMemory = vm.Total
	}

	return SystemInfo{
		NumCPU:      numCPU,
		CPUModel:    cpuModel,
		CPUSpeedMHz: cpuSpeed,
		GOARCH:      goArch,
		TotalMemory: totalMemory,
	}
}
