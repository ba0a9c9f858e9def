package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// PerfResult gathers aggregated metrics for the test run. Atomic
// counters are used to avoid lock contention on hot paths. Latencies are
// in nanoseconds; P95 comes from a bounded sample.
type PerfResult struct {
	TotalRequests int64
	SuccessCount  int64
	ErrorCount    int64
	LatencySum    int64

	mu     sync.Mutex
	sample []int64
}

const (
	fixedWorkers   = 50
	fixedRPSTarget = 700
	fixedDuration  = 30 * time.Second
	defaultTimeout = 30 * time.Second
	sampleCap      = 20000
)

var baseURL = envOr("STAKEVAULT_URL", "http://localhost:8080")
var adminToken = envOr("STAKEVAULT_ADMIN_TOKEN", "")

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	transport := &http.Transport{
		MaxIdleConns:        fixedWorkers * 4,
		MaxIdleConnsPerHost: fixedWorkers * 4,
		IdleConnTimeout:     90 * time.Second,
	}
	httpClient := &http.Client{
		Transport: transport,
		Timeout:   defaultTimeout,
	}

	campaignName := fmt.Sprintf("perf%d", time.Now().Unix())
	if err := createCampaign(httpClient, campaignName); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create campaign: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("campaign %s created, hammering the read path\n", campaignName)

	result := &PerfResult{}
	limiter := rate.NewLimiter(rate.Limit(fixedRPSTarget), fixedWorkers)

	ctx, cancel := context.WithTimeout(context.Background(), fixedDuration)
	defer cancel()

	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < fixedWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(ctx, httpClient, limiter, campaignName, result)
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	printSummary(result, elapsed)
}

func worker(ctx context.Context, client *http.Client, limiter *rate.Limiter, campaign string, result *PerfResult) {
	url := fmt.Sprintf("%s/v1/campaigns/%s", baseURL, campaign)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		begin := time.Now()
		resp, err := client.Get(url)
		latency := time.Since(begin).Nanoseconds()

		atomic.AddInt64(&result.TotalRequests, 1)
		atomic.AddInt64(&result.LatencySum, latency)
		if err != nil || resp.StatusCode != http.StatusOK {
			atomic.AddInt64(&result.ErrorCount, 1)
		} else {
			atomic.AddInt64(&result.SuccessCount, 1)
		}
		if resp != nil {
			resp.Body.Close()
		}

		result.mu.Lock()
		if len(result.sample) < sampleCap {
			result.sample = append(result.sample, latency)
		}
		result.mu.Unlock()
	}
}

func createCampaign(client *http.Client, name string) error {
	now := time.Now().Unix()
	body, err := json.Marshal(map[string]any{
		"name":           name,
		"variant":        "nfttotoken",
		"start":          now + 60,
		"finish":         now + 86400,
		"time_to_reward": 3600,
		"nft_account":    "simpleassets",
		"token_account":  "niceonetoken",
		"asset_quantity": 100,
		"asset_symbol":   "NICE",
		"places":         1000,
		"memo":           now,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/v1/campaigns", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Admin-Token", adminToken)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func printSummary(result *PerfResult, elapsed time.Duration) {
	total := atomic.LoadInt64(&result.TotalRequests)
	success := atomic.LoadInt64(&result.SuccessCount)
	errors := atomic.LoadInt64(&result.ErrorCount)
	latencySum := atomic.LoadInt64(&result.LatencySum)

	var avg, p95 time.Duration
	if total > 0 {
		avg = time.Duration(latencySum / total)
	}
	result.mu.Lock()
	if len(result.sample) > 0 {
		sort.Slice(result.sample, func(i, j int) bool { return result.sample[i] < result.sample[j] })
		p95 = time.Duration(result.sample[len(result.sample)*95/100])
	}
	result.mu.Unlock()

	fmt.Printf("\n== perf summary ==\n")
	fmt.Printf("duration:   %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("requests:   %d (%.1f rps)\n", total, float64(total)/elapsed.Seconds())
	fmt.Printf("success:    %d\n", success)
	fmt.Printf("errors:     %d\n", errors)
	fmt.Printf("avg latency: %v\n", avg)
	fmt.Printf("p95 latency: %v\n", p95)
}
