package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"calliope-hq/calliope/pkg/cli"
)

var benchFlags struct {
	target      string
	endpoint    string
	prompt      string
	duration    time.Duration
	timeout     time.Duration
	rate        int
	concurrency int
	output      string
}

var benchCmd = &cobra.Command{
	Use:     "bench",
	Aliases: []string{"benchmark"},
	Short:   "Load test a running gateway",
	Long: `Send paced HTTP requests to a running gateway and report latency.

The bench command generates real requests against the chosen endpoint at a
fixed rate, spread over a pool of concurrent clients, and reports
throughput, latency percentiles, and status code counts.

Benchmarking the generation endpoints sends real upstream traffic and
spends real quota; the default health endpoint stays inside the gateway.

Examples:
  # Exercise the health endpoint
  calliope bench --target http://localhost:8080

  # Sustained text generation load
  calliope bench --endpoint text --duration 60s --rate 5 --concurrency 10

  # JSON report for dashboards
  calliope bench --duration 10s --output json`,
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().StringVar(&benchFlags.target, "target", "http://localhost:8080", "gateway base URL")
	benchCmd.Flags().StringVar(&benchFlags.endpoint, "endpoint", "health", "endpoint to exercise: health, text, speech")
	benchCmd.Flags().StringVar(&benchFlags.prompt, "prompt", "Say hello.", "prompt or text sent to generation endpoints")
	benchCmd.Flags().DurationVar(&benchFlags.duration, "duration", 30*time.Second, "test duration")
	benchCmd.Flags().DurationVar(&benchFlags.timeout, "timeout", 60*time.Second, "per-request timeout")
	benchCmd.Flags().IntVar(&benchFlags.rate, "rate", 10, "requests per second")
	benchCmd.Flags().IntVar(&benchFlags.concurrency, "concurrency", 4, "concurrent clients")
	benchCmd.Flags().StringVarP(&benchFlags.output, "output", "o", "text", "output format: text, json")
}

func runBench(cmd *cobra.Command, args []string) error {
	if benchFlags.rate <= 0 {
		return fmt.Errorf("--rate must be positive")
	}
	if benchFlags.concurrency <= 0 {
		return fmt.Errorf("--concurrency must be positive")
	}

	buildRequest, err := benchRequestBuilder()
	if err != nil {
		return err
	}

	total := int(benchFlags.duration.Seconds() * float64(benchFlags.rate))
	if total < 1 {
		total = 1
	}

	if benchFlags.output != "json" {
		fmt.Println("Calliope Bench")
		fmt.Println("==============")
		fmt.Printf("Target:      %s\n", benchFlags.target)
		fmt.Printf("Endpoint:    %s\n", benchFlags.endpoint)
		fmt.Printf("Duration:    %s\n", benchFlags.duration)
		fmt.Printf("Rate:        %d req/s\n", benchFlags.rate)
		fmt.Printf("Concurrency: %d\n", benchFlags.concurrency)
		fmt.Println()
		fmt.Println("Running...")
		fmt.Println()
	}

	results := runLoad(total, buildRequest)

	if benchFlags.output == "json" {
		formatter := cli.NewFormatter(cli.FormatJSON)
		return formatter.FormatTo(os.Stdout, buildBenchReport(results))
	}
	displayBenchResults(results)
	return nil
}

// benchRequestBuilder returns a factory producing one fresh request per
// call; request bodies cannot be reused across calls.
func benchRequestBuilder() (func() (*http.Request, error), error) {
	base := strings.TrimRight(benchFlags.target, "/")

	newPost := func(url string, payload map[string]string) func() (*http.Request, error) {
		body, _ := json.Marshal(payload)
		return func() (*http.Request, error) {
			req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				return nil, err
			}
			req.Header.Set("Content-Type", "application/json")
			return req, nil
		}
	}

	switch benchFlags.endpoint {
	case "health":
		url := base + "/health"
		return func() (*http.Request, error) {
			return http.NewRequest(http.MethodGet, url, nil)
		}, nil
	case "text":
		return newPost(base+"/v1/generate/text", map[string]string{"prompt": benchFlags.prompt}), nil
	case "speech":
		return newPost(base+"/v1/generate/speech", map[string]string{"text": benchFlags.prompt}), nil
	default:
		return nil, fmt.Errorf("unsupported endpoint %q (use health, text, or speech)", benchFlags.endpoint)
	}
}

type benchResults struct {
	total           int
	duration        time.Duration
	latencies       []time.Duration
	statusCounts    map[int]int
	transportErrors int
}

func (r *benchResults) completed() int {
	return len(r.latencies) + r.transportErrors
}

func (r *benchResults) succeeded() int {
	n := 0
	for code, count := range r.statusCounts {
		if code >= 200 && code < 300 {
			n += count
		}
	}
	return n
}

// runLoad paces request starts with a ticker and fans them out over a
// worker pool. Ctrl+C stops the run early; whatever was measured so far is
// still reported.
func runLoad(total int, buildRequest func() (*http.Request, error)) *benchResults {
	ctx := cli.SetupSignalHandler()

	results := &benchResults{
		total:        total,
		statusCounts: make(map[int]int),
	}

	client := &http.Client{Timeout: benchFlags.timeout}
	jobs := make(chan struct{})

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		completed int64
	)

	progress := cli.NewProgressReporter(nil)
	progress.Start(int64(total))

	for i := 0; i < benchFlags.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				req, err := buildRequest()
				if err != nil {
					mu.Lock()
					results.transportErrors++
					mu.Unlock()
					progress.Update(atomic.AddInt64(&completed, 1))
					continue
				}

				start := time.Now()
				resp, err := client.Do(req.WithContext(ctx))
				if err != nil {
					mu.Lock()
					results.transportErrors++
					mu.Unlock()
				} else {
					_, _ = io.Copy(io.Discard, resp.Body)
					_ = resp.Body.Close()
					latency := time.Since(start)

					mu.Lock()
					results.statusCounts[resp.StatusCode]++
					results.latencies = append(results.latencies, latency)
					mu.Unlock()
				}
				progress.Update(atomic.AddInt64(&completed, 1))
			}
		}()
	}

	interval := time.Second / time.Duration(benchFlags.rate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
send:
	for sent := 0; sent < total; sent++ {
		select {
		case <-ctx.Done():
			break send
		case <-ticker.C:
			select {
			case jobs <- struct{}{}:
			case <-ctx.Done():
				break send
			}
		}
	}
	close(jobs)
	wg.Wait()
	progress.Finish()

	results.duration = time.Since(start)
	return results
}

// latencySummary holds the percentile breakdown of a run.
type latencySummary struct {
	Min    time.Duration
	Mean   time.Duration
	Median time.Duration
	P95    time.Duration
	P99    time.Duration
	Max    time.Duration
}

func summarizeLatencies(latencies []time.Duration) latencySummary {
	if len(latencies) == 0 {
		return latencySummary{}
	}

	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, l := range sorted {
		sum += l
	}

	return latencySummary{
		Min:    sorted[0],
		Mean:   sum / time.Duration(len(sorted)),
		Median: percentile(sorted, 0.50),
		P95:    percentile(sorted, 0.95),
		P99:    percentile(sorted, 0.99),
		Max:    sorted[len(sorted)-1],
	}
}

// percentile returns the value at quantile q from an ascending slice using
// the nearest-rank method.
func percentile(sorted []time.Duration, q float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(q*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func displayBenchResults(results *benchResults) {
	fmt.Println()
	fmt.Println("Results:")
	fmt.Println("--------")
	fmt.Printf("Requests:        %d completed, %d succeeded, %d failed\n",
		results.completed(), results.succeeded(), results.completed()-results.succeeded())
	fmt.Printf("Duration:        %.1fs\n", results.duration.Seconds())

	if results.completed() > 0 && results.duration > 0 {
		throughput := float64(results.completed()) / results.duration.Seconds()
		fmt.Printf("Throughput:      %.2f req/s\n", throughput)
	}

	if len(results.latencies) > 0 {
		summary := summarizeLatencies(results.latencies)

		fmt.Println()
		fmt.Println("Latency:")
		fmt.Printf("  Min:     %.1fms\n", toMillis(summary.Min))
		fmt.Printf("  Mean:    %.1fms\n", toMillis(summary.Mean))
		fmt.Printf("  Median:  %.1fms\n", toMillis(summary.Median))
		fmt.Printf("  p95:     %.1fms\n", toMillis(summary.P95))
		fmt.Printf("  p99:     %.1fms\n", toMillis(summary.P99))
		fmt.Printf("  Max:     %.1fms\n", toMillis(summary.Max))
	}

	if len(results.statusCounts) > 0 || results.transportErrors > 0 {
		fmt.Println()
		fmt.Println("Status Codes:")

		codes := make([]int, 0, len(results.statusCounts))
		for code := range results.statusCounts {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		for _, code := range codes {
			fmt.Printf("  %d:     %d\n", code, results.statusCounts[code])
		}
		if results.transportErrors > 0 {
			fmt.Printf("  Transport errors: %d\n", results.transportErrors)
		}
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// benchReport is the JSON form of a bench run.
type benchReport struct {
	Target          string         `json:"target"`
	Endpoint        string         `json:"endpoint"`
	Requested       int            `json:"requested"`
	Completed       int            `json:"completed"`
	Succeeded       int            `json:"succeeded"`
	TransportErrors int            `json:"transport_errors"`
	DurationSeconds float64        `json:"duration_seconds"`
	ThroughputRPS   float64        `json:"throughput_rps"`
	LatencyMs       *latencyMs     `json:"latency_ms,omitempty"`
	StatusCodes     map[string]int `json:"status_codes"`
}

type latencyMs struct {
	Min    float64 `json:"min"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P95    float64 `json:"p95"`
	P99    float64 `json:"p99"`
	Max    float64 `json:"max"`
}

func buildBenchReport(results *benchResults) benchReport {
	report := benchReport{
		Target:          benchFlags.target,
		Endpoint:        benchFlags.endpoint,
		Requested:       results.total,
		Completed:       results.completed(),
		Succeeded:       results.succeeded(),
		TransportErrors: results.transportErrors,
		DurationSeconds: results.duration.Seconds(),
		StatusCodes:     make(map[string]int, len(results.statusCounts)),
	}

	if results.duration > 0 {
		report.ThroughputRPS = float64(results.completed()) / results.duration.Seconds()
	}
	for code, count := range results.statusCounts {
		report.StatusCodes[fmt.Sprintf("%d", code)] = count
	}

	if len(results.latencies) > 0 {
		summary := summarizeLatencies(results.latencies)
		report.LatencyMs = &latencyMs{
			Min:    toMillis(summary.Min),
			Mean:   toMillis(summary.Mean),
			Median: toMillis(summary.Median),
			P95:    toMillis(summary.P95),
			P99:    toMillis(summary.P99),
			Max:    toMillis(summary.Max),
		}
	}

	return report
}
