package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

type LoadTestConfig struct {
	BaseURL       string
	Token         string
	CustomerID    string
	TotalRequests int
	Concurrency   int
	Duration      time.Duration
}

type Stats struct {
	TotalRequests   int64
	SuccessRequests int64
	FailedRequests  int64
	TotalLatency    int64
	MinLatency      int64
	MaxLatency      int64
	Errors          sync.Map
}

var client = &http.Client{Timeout: 10 * time.Second}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Service base URL")
	token := flag.String("token", os.Getenv("LOADTEST_TOKEN"), "Bearer token (from POST /api/auth/login)")
	customer := flag.String("customer", "", "Customer ID used for created orders")
	requests := flag.Int("requests", 1000, "Total number of requests")
	concurrency := flag.Int("concurrency", 10, "Number of parallel requests")
	duration := flag.Duration("duration", 0, "Test duration (0 = use -requests)")
	operation := flag.String("operation", "create", "Operation type: create, get, list, status, mixed")
	flag.Parse()

	if *token == "" || *customer == "" {
		fmt.Println("-token and -customer are required")
		os.Exit(2)
	}

	config := LoadTestConfig{
		BaseURL:       *baseURL,
		Token:         *token,
		CustomerID:    *customer,
		TotalRequests: *requests,
		Concurrency:   *concurrency,
		Duration:      *duration,
	}

	fmt.Printf("🚀 Starting load test\n")
	fmt.Printf("URL: %s\n", config.BaseURL)
	fmt.Printf("Operation: %s\n", *operation)
	if config.Duration > 0 {
		fmt.Printf("Duration: %v\n", config.Duration)
	} else {
		fmt.Printf("Requests: %d\n", config.TotalRequests)
	}
	fmt.Printf("Concurrency: %d\n\n", config.Concurrency)

	stats := &Stats{
		MinLatency: int64(^uint64(0) >> 1), // max int64
	}

	startTime := time.Now()

	switch *operation {
	case "create":
		runLoop(config, func(int64) { createOrder(config, stats) })
	case "get":
		ids := seedOrders(config, 100)
		if len(ids) == 0 {
			fmt.Println("❌ Failed to create orders for test")
			return
		}
		runLoop(config, func(i int64) { getOrder(config, ids[i%int64(len(ids))], stats) })
	case "list":
		runLoop(config, func(int64) { listOrders(config, stats) })
	case "status":
		ids := seedOrders(config, 100)
		if len(ids) == 0 {
			fmt.Println("❌ Failed to create orders for test")
			return
		}
		runLoop(config, func(i int64) { flipStatus(config, ids[i%int64(len(ids))], i, stats) })
	case "mixed":
		ids := seedOrders(config, 50)
		runLoop(config, func(i int64) {
			op := i % 10
			switch {
			case op < 3:
				createOrder(config, stats)
			case op < 6 && len(ids) > 0:
				getOrder(config, ids[i%int64(len(ids))], stats)
			case op < 8:
				listOrders(config, stats)
			case len(ids) > 0:
				flipStatus(config, ids[i%int64(len(ids))], i, stats)
			}
		})
	default:
		fmt.Printf("Unknown operation: %s\n", *operation)
		return
	}

	elapsed := time.Since(startTime)

	printResults(stats, elapsed)
}

// runLoop issues requests until the request count or the duration is used up,
// keeping at most Concurrency in flight.
func runLoop(config LoadTestConfig, fn func(index int64)) {
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, config.Concurrency)

	requestCount := int64(0)
	endTime := time.Now().Add(config.Duration)

	for (config.Duration <= 0 || !time.Now().After(endTime)) &&
		(config.Duration != 0 || requestCount < int64(config.TotalRequests)) {
		wg.Add(1)
		semaphore <- struct{}{}
		idx := atomic.AddInt64(&requestCount, 1)

		go func(index int64) {
			defer wg.Done()
			defer func() { <-semaphore }()

			fn(index)
		}(idx)
	}

	wg.Wait()
}

func seedOrders(config LoadTestConfig, n int) []string {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if id := createOrderAndGetID(config); id != "" {
			ids = append(ids, id)
		}
	}
	fmt.Printf("✅ Created %d orders for testing\n\n", len(ids))
	return ids
}

func orderPayload(config LoadTestConfig) map[string]any {
	return map[string]any{
		"customerId": config.CustomerID,
		"orderType":  "WALK_IN",
		"items": []map[string]any{
			{"name": fmt.Sprintf("Shirt-%d", time.Now().UnixNano()), "service": "Wash & Iron", "quantity": 3, "unitPrice": "4.50"},
			{"name": "Trousers", "service": "Dry Clean", "quantity": 1, "unitPrice": "9.00"},
		},
	}
}

func createOrder(config LoadTestConfig, stats *Stats) string {
	return makeRequest(config, "POST", "/api/orders", orderPayload(config), stats)
}

func createOrderAndGetID(config LoadTestConfig) string {
	body := makeRequestRaw(config, "POST", "/api/orders", orderPayload(config))
	if body == "" {
		return ""
	}

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		return ""
	}
	return result.Data.ID
}

func getOrder(config LoadTestConfig, orderID string, stats *Stats) string {
	return makeRequest(config, "GET", "/api/orders/"+orderID, nil, stats)
}

func listOrders(config LoadTestConfig, stats *Stats) string {
	return makeRequest(config, "GET", "/api/orders?limit=20", nil, stats)
}

// flipStatus moves an order between IN_PROGRESS and READY. Concurrent flips of
// the same order may be refused with 409, which counts as a failure.
func flipStatus(config LoadTestConfig, orderID string, index int64, stats *Stats) string {
	to := "READY"
	if (index/100)%2 == 1 {
		to = "IN_PROGRESS"
	}
	return makeRequest(config, "PATCH", "/api/orders/"+orderID+"/status", map[string]any{"status": to}, stats)
}

func newRequest(config LoadTestConfig, method, path string, payload any) (*http.Request, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonData, _ := json.Marshal(payload)
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, config.BaseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+config.Token)
	return req, nil
}

func makeRequest(config LoadTestConfig, method, path string, payload any, stats *Stats) string {
	start := time.Now()
	atomic.AddInt64(&stats.TotalRequests, 1)

	req, err := newRequest(config, method, path, payload)
	if err != nil {
		recordError(stats, err)
		return ""
	}

	resp, err := client.Do(req)
	if err != nil {
		recordError(stats, err)
		return ""
	}
	defer func() { _ = resp.Body.Close() }()

	latency := time.Since(start).Milliseconds()
	recordLatency(stats, latency)

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		atomic.AddInt64(&stats.SuccessRequests, 1)
		return string(body)
	}
	recordError(stats, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body)))
	return ""
}

func makeRequestRaw(config LoadTestConfig, method, path string, payload any) string {
	req, err := newRequest(config, method, path, payload)
	if err != nil {
		return ""
	}

	resp, err := client.Do(req)
	if err != nil {
		return ""
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	return string(body)
}

func recordLatency(stats *Stats, latency int64) {
	atomic.AddInt64(&stats.TotalLatency, latency)

	for {
		old := atomic.LoadInt64(&stats.MinLatency)
		if latency >= old {
			break
		}
		if atomic.CompareAndSwapInt64(&stats.MinLatency, old, latency) {
			break
		}
	}

	for {
		old := atomic.LoadInt64(&stats.MaxLatency)
		if latency <= old {
			break
		}
		if atomic.CompareAndSwapInt64(&stats.MaxLatency, old, latency) {
			break
		}
	}
}

func recordError(stats *Stats, err error) {
	atomic.AddInt64(&stats.FailedRequests, 1)
	val, _ := stats.Errors.LoadOrStore(err.Error(), new(int64))
	atomic.AddInt64(val.(*int64), 1)
}

func printResults(stats *Stats, elapsed time.Duration) {
	total := atomic.LoadInt64(&stats.TotalRequests)
	success := atomic.LoadInt64(&stats.SuccessRequests)
	failed := atomic.LoadInt64(&stats.FailedRequests)
	totalLatency := atomic.LoadInt64(&stats.TotalLatency)
	minLatency := atomic.LoadInt64(&stats.MinLatency)
	maxLatency := atomic.LoadInt64(&stats.MaxLatency)

	if total == 0 {
		fmt.Println("No requests sent")
		return
	}

	fmt.Printf("\n📊 Load Test Results\n")
	fmt.Printf("═══════════════════════════════════════════════════\n")
	fmt.Printf("Total time:           %v\n", elapsed)
	fmt.Printf("Total requests:       %d\n", total)
	fmt.Printf("Successful:           %d (%.2f%%)\n", success, float64(success)/float64(total)*100)
	fmt.Printf("Failed:               %d (%.2f%%)\n", failed, float64(failed)/float64(total)*100)
	fmt.Printf("\n")
	fmt.Printf("Throughput:           %.2f req/sec\n", float64(total)/elapsed.Seconds())
	fmt.Printf("\n")
	fmt.Printf("Latency:\n")
	fmt.Printf("  Average:            %d ms\n", totalLatency/total)
	fmt.Printf("  Minimum:            %d ms\n", minLatency)
	fmt.Printf("  Maximum:            %d ms\n", maxLatency)

	if failed > 0 {
		fmt.Printf("\n❌ Errors:\n")
		stats.Errors.Range(func(key, value any) bool {
			count := atomic.LoadInt64(value.(*int64))
			fmt.Printf("  [%d] %s\n", count, key.(string))
			return true
		})
	}
	fmt.Printf("═══════════════════════════════════════════════════\n")
}
