// poolbench drives the worker pool end to end: a set of throttled
// producers submits synthetic CPU-bound tasks, a collector retrieves
// every result, and the run ends with a summary table plus a handful of
// invariant checks (population bounds, accounting, checksum).
//
// Usage:
//
//	poolbench -mode cached -workers 2 -ceiling 8 -tasks 2000 -rate 500
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/utkarsh5026/elasticpool/pool"
)

var (
	bold  = color.New(color.Bold)
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed)
)

// chunk is one synthetic unit of work: a xorshift-scrambled checksum over
// a slice of the keyspace, with optional simulated latency.
type chunk struct {
	id    int
	size  int
	sleep time.Duration
}

// result is what each task hands back through its handle.
type result struct {
	id       int
	checksum uint64
	elapsed  time.Duration
}

func (c chunk) run() pool.Value {
	start := time.Now()
	if c.sleep > 0 {
		time.Sleep(c.sleep)
	}

	state := uint64(c.id)*2654435761 + 1
	var sum uint64
	for range c.size {
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		sum += state
	}
	// A little floating-point work so the loop is not optimized away.
	_ = math.Sin(float64(sum % 360))

	return pool.NewValue(result{id: c.id, checksum: sum, elapsed: time.Since(start)})
}

// runStats aggregates what the producers and collector observed.
type runStats struct {
	accepted    atomic.Int64
	rejected    atomic.Int64
	peakWorkers atomic.Int64
	peakQueue   atomic.Int64
}

func main() {
	enableWindowsANSI()

	modeFlag := flag.String("mode", "fixed", "Pool mode: fixed or cached")
	workersFlag := flag.Int("workers", 0, "Initial worker count (0 = auto-detect)")
	ceilingFlag := flag.Int("ceiling", 16, "Worker ceiling (cached mode only)")
	queueFlag := flag.Int("queue", 256, "Task queue ceiling")
	tasksFlag := flag.Int("tasks", 1000, "Number of tasks to submit")
	producersFlag := flag.Int("producers", 4, "Number of concurrent producer goroutines")
	rateFlag := flag.Float64("rate", 0, "Submission rate limit in tasks/sec (0 = unthrottled)")
	sizeFlag := flag.Int("size", 200_000, "Work units per task")
	sleepFlag := flag.Duration("sleep", 0, "Simulated latency per task (e.g. 20ms)")
	retryFlag := flag.Bool("retry", false, "Re-submit rejected tasks with jittered backoff")
	flag.Parse()

	mode, err := parseMode(*modeFlag)
	if err != nil {
		_, _ = red.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	workers := *workersFlag
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	printConfiguration(mode, workers, *ceilingFlag, *queueFlag, *tasksFlag, *producersFlag, *rateFlag)

	coord := pool.NewCoordinator(
		pool.WithMode(mode),
		pool.WithQueueCeiling(*queueFlag),
		pool.WithWorkerCeiling(*ceilingFlag),
	)
	if err := coord.Start(workers); err != nil {
		_, _ = red.Fprintf(os.Stderr, "start failed: %v\n", err)
		os.Exit(1)
	}

	stats := &runStats{}
	stats.peakWorkers.Store(int64(coord.Stats().CurrentWorkers))
	bar := makeProgressBar(*tasksFlag)

	stopSampling := sampleStats(coord, stats)

	start := time.Now()
	collected, checksum := runLoad(coord, stats, bar, loadConfig{
		tasks:     *tasksFlag,
		producers: *producersFlag,
		rateLimit: *rateFlag,
		size:      *sizeFlag,
		sleep:     *sleepFlag,
		retry:     *retryFlag,
	})
	elapsed := time.Since(start)
	stopSampling()

	_ = bar.Finish()

	shutdownStart := time.Now()
	if err := coord.Shutdown(30 * time.Second); err != nil {
		_, _ = red.Fprintf(os.Stderr, "shutdown: %v\n", err)
	}
	shutdownElapsed := time.Since(shutdownStart)

	printSummary(mode, workers, stats, coord.Stats(), collected, elapsed, shutdownElapsed)
	if !checkInvariants(mode, workers, *ceilingFlag, *queueFlag, *tasksFlag, stats, coord.Stats(), collected, checksum) {
		os.Exit(1)
	}
}

func parseMode(s string) (pool.Mode, error) {
	switch s {
	case "fixed":
		return pool.Fixed, nil
	case "cached":
		return pool.Cached, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (want fixed or cached)", s)
	}
}

type loadConfig struct {
	tasks     int
	producers int
	rateLimit float64
	size      int
	sleep     time.Duration
	retry     bool
}

// runLoad fans the task ids across the producers, throttles submissions
// through a shared token bucket, and collects every accepted result. It
// returns the number of results collected and the xor of their checksums.
func runLoad(coord *pool.Coordinator, stats *runStats, bar *progressbar.ProgressBar, cfg loadConfig) (int, uint64) {
	var limiter *rate.Limiter
	if cfg.rateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.rateLimit), max(1, cfg.producers))
	}

	handles := make(chan *pool.ResultHandle, cfg.tasks)

	var g errgroup.Group
	producers := max(1, cfg.producers)
	for p := range producers {
		g.Go(func() error {
			for id := p; id < cfg.tasks; id += producers {
				if limiter != nil {
					if err := limiter.Wait(context.Background()); err != nil {
						return err
					}
				}

				task := pool.TaskFunc(chunk{id: id, size: cfg.size, sleep: cfg.sleep}.run)
				var h *pool.ResultHandle
				if cfg.retry {
					h = coord.SubmitWithBackoff(task, pool.RetryPolicy{
						MaxAttempts: 5,
						Backoff:     pool.BackoffJittered,
					})
				} else {
					h = coord.Submit(task)
				}

				if h.Valid() {
					stats.accepted.Add(1)
					handles <- h
				} else {
					stats.rejected.Add(1)
					_ = bar.Add(1)
				}
			}
			return nil
		})
	}

	collectDone := make(chan struct{})
	var collected int
	var checksum uint64
	go func() {
		defer close(collectDone)
		for h := range handles {
			v := h.Get()
			if v.Empty() {
				continue
			}
			r, err := pool.Extract[result](v)
			if err != nil {
				_, _ = red.Fprintf(os.Stderr, "extract: %v\n", err)
				continue
			}
			collected++
			checksum ^= r.checksum
			_ = bar.Add(1)
		}
	}()

	_ = g.Wait()
	close(handles)
	<-collectDone

	return collected, checksum
}

// sampleStats polls the coordinator for population and queue high-water
// marks until the returned stop function is called.
func sampleStats(coord *pool.Coordinator, stats *runStats) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		ticker := time.NewTicker(5 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				s := coord.Stats()
				if int64(s.CurrentWorkers) > stats.peakWorkers.Load() {
					stats.peakWorkers.Store(int64(s.CurrentWorkers))
				}
				if int64(s.QueueSize) > stats.peakQueue.Load() {
					stats.peakQueue.Store(int64(s.QueueSize))
				}
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}

func printConfiguration(mode pool.Mode, workers, ceiling, queue, tasks, producers int, rateLimit float64) {
	_, _ = bold.Println("⚙️  Configuration:")
	fmt.Printf("  Mode:             %s\n", mode)
	fmt.Printf("  Initial workers:  %d (of %d CPU cores)\n", workers, runtime.NumCPU())
	if mode == pool.Cached {
		fmt.Printf("  Worker ceiling:   %d\n", ceiling)
	}
	fmt.Printf("  Queue ceiling:    %d\n", queue)
	fmt.Printf("  Tasks:            %d across %d producers\n", tasks, producers)
	if rateLimit > 0 {
		fmt.Printf("  Producer rate:    %.0f tasks/sec\n", rateLimit)
	} else {
		fmt.Printf("  Producer rate:    unthrottled\n")
	}
	fmt.Println()
}

func printSummary(mode pool.Mode, workers int, stats *runStats, final pool.Stats, collected int, elapsed, shutdownElapsed time.Duration) {
	fmt.Println()
	_, _ = bold.Println("📊 RUN SUMMARY")
	fmt.Println()

	accepted := stats.accepted.Load()
	throughput := float64(collected) / elapsed.Seconds()

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Metric", "Value")
	_ = table.Append("Mode", mode.String())
	_ = table.Append("Initial workers", fmt.Sprintf("%d", workers))
	_ = table.Append("Peak workers", fmt.Sprintf("%d", stats.peakWorkers.Load()))
	_ = table.Append("Final workers", fmt.Sprintf("%d", final.CurrentWorkers))
	_ = table.Append("Queue high-water", fmt.Sprintf("%d", stats.peakQueue.Load()))
	_ = table.Append("Accepted", fmt.Sprintf("%d", accepted))
	_ = table.Append("Rejected", fmt.Sprintf("%d", stats.rejected.Load()))
	_ = table.Append("Collected", fmt.Sprintf("%d", collected))
	_ = table.Append("Elapsed", elapsed.Round(time.Millisecond).String())
	_ = table.Append("Throughput", fmt.Sprintf("%.0f tasks/sec", throughput))
	_ = table.Append("Shutdown drain", shutdownElapsed.Round(time.Millisecond).String())
	_ = table.Render()
}

// checkInvariants verifies the pool's advertised guarantees against what
// the run observed and prints a pass/fail line per check.
func checkInvariants(mode pool.Mode, workers, ceiling, queue, tasks int, stats *runStats, final pool.Stats, collected int, checksum uint64) bool {
	fmt.Println()
	_, _ = bold.Println("🔍 Invariant checks:")

	ok := true
	check := func(name string, pass bool, detail string) {
		if pass {
			_, _ = green.Printf("  ✓ %s\n", name)
		} else {
			ok = false
			_, _ = red.Printf("  ✗ %s: %s\n", name, detail)
		}
	}

	accepted := stats.accepted.Load()
	rejected := stats.rejected.Load()

	check("accepted + rejected == submitted",
		accepted+rejected == int64(tasks),
		fmt.Sprintf("accepted=%d rejected=%d tasks=%d", accepted, rejected, tasks))

	check("every accepted task delivered a result",
		int64(collected) == accepted,
		fmt.Sprintf("collected=%d accepted=%d", collected, accepted))

	if mode == pool.Cached {
		check("population never exceeded the ceiling",
			stats.peakWorkers.Load() <= int64(ceiling),
			fmt.Sprintf("peak=%d ceiling=%d", stats.peakWorkers.Load(), ceiling))
	} else {
		check("fixed population never changed",
			stats.peakWorkers.Load() == int64(workers),
			fmt.Sprintf("peak=%d workers=%d", stats.peakWorkers.Load(), workers))
	}

	check("queue never exceeded its ceiling",
		stats.peakQueue.Load() <= int64(queue),
		fmt.Sprintf("peak=%d ceiling=%d", stats.peakQueue.Load(), queue))

	check("all workers exited at shutdown",
		final.CurrentWorkers == 0,
		fmt.Sprintf("remaining=%d", final.CurrentWorkers))

	check("checksum is nonzero for the collected set",
		collected == 0 || checksum != 0,
		"checksum collapsed to zero")

	return ok
}

func makeProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Processing tasks"),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
