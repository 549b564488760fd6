package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	goToken "github.com/MrEthical07/goToken"
	"github.com/MrEthical07/goToken/internal/logx"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func main() {
	var (
		subjects    = flag.Int("subjects", 10000, "number of distinct subjects")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (issue + validate)")
		audit       = flag.Bool("audit", false, "stream audit events to redis")
		redisAddr   = flag.String("redis-addr", "", "redis address for -audit; if empty, REDIS_ADDR env or miniredis is used")
		stream      = flag.String("stream", "gotoken:audit", "audit stream key")
		logLevel    = flag.String("log-level", "error", "log level")
	)
	flag.Parse()

	if *subjects <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "subjects, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	logger := logx.New(logx.Config{Service: "gotoken-loadtest", Level: *logLevel})

	secret := os.Getenv("GOTOKEN_JWT_SECRET")
	if secret == "" {
		secret = "loadtest-secret-0123456789abcdef-0123456789"
	}

	builder := goToken.New().
		WithSecret(secret).
		WithLogger(logger).
		WithMetricsEnabled(true).
		WithLatencyHistograms(true)

	var (
		cleanup = func() {}
		client  redis.UniversalClient
	)
	if *audit {
		client, cleanup = openRedis(*redisAddr)
		builder = builder.WithAuditSink(goToken.NewRedisStreamSink(client, goToken.RedisStreamOptions{
			Stream: *stream,
			OnError: func(err error) {
				logger.Error("audit stream write failed", "error", err)
			},
		}))
	}
	defer cleanup()

	engine, err := builder.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
		os.Exit(1)
	}

	tokens := make([]string, *subjects)
	issueStats := runIssuePhase(engine, tokens, *ops, *concurrency)
	validateStats := runValidatePhase(engine, tokens, *ops, *concurrency)

	engine.Close()

	fmt.Println("---- results ----")
	printStats("issue", issueStats)
	printStats("validate", validateStats)

	snap := engine.MetricsSnapshot()
	fmt.Printf("counters: access_issued=%d parse_success=%d parse_invalid=%d audit_dropped=%d\n",
		snap.Counters[goToken.MetricAccessIssued],
		snap.Counters[goToken.MetricParseSuccess],
		snap.Counters[goToken.MetricParseInvalid],
		engine.AuditDropped(),
	)
	if client != nil {
		n, err := client.XLen(context.Background(), *stream).Result()
		if err != nil {
			slog.Error("xlen failed", "error", err)
		} else {
			fmt.Printf("audit stream %s length=%d\n", *stream, n)
		}
	}
}

func openRedis(addr string) (redis.UniversalClient, func()) {
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{mr.Addr()},
		})
		fmt.Printf("using miniredis at %s\n", mr.Addr())
		return client, func() {
			_ = client.Close()
			mr.Close()
		}
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{addr},
	})
	fmt.Printf("using redis at %s\n", addr)
	return client, func() { _ = client.Close() }
}

// runIssuePhase issues access tokens round-robin over subjects and keeps the
// latest token per subject for the validate phase.
func runIssuePhase(engine *goToken.Engine, tokens []string, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := i % len(tokens)
				t0 := time.Now()
				tok, err := engine.CreateAccessToken(strconv.Itoa(idx), map[string]any{"username": "user-" + strconv.Itoa(idx)})
				d := time.Since(t0)

				mu.Lock()
				if err != nil {
					failures++
				} else {
					tokens[idx] = tok
				}
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runValidatePhase(engine *goToken.Engine, tokens []string, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(tokens))
				t0 := time.Now()
				ok := engine.ValidateTokenFor(tokens[idx], strconv.Itoa(idx))
				d := time.Since(t0)
				if !ok {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
