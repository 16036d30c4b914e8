package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"vitals-monitor/models"
)

var (
	requestCount  int64
	successCount  int64
	failCount     int64
	totalLatency  int64 // в наносекундах
	minLatency    int64 = 1 << 62
	maxLatency    int64
	latencies     []int64
	latenciesLock sync.Mutex
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./tools <url> [threads] [subjects] [duration]")
		fmt.Println("Example: go run ./tools http://localhost:8080/readings 4 100 30s")
		os.Exit(1)
	}

	url := os.Args[1]
	threads := 4
	subjects := 100
	duration := 30 * time.Second

	if len(os.Args) > 2 {
		fmt.Sscanf(os.Args[2], "%d", &threads)
	}
	if len(os.Args) > 3 {
		fmt.Sscanf(os.Args[3], "%d", &subjects)
	}
	if len(os.Args) > 4 {
		d, err := time.ParseDuration(os.Args[4])
		if err == nil {
			duration = d
		}
	}
	if threads <= 0 {
		threads = 1
	}

	fmt.Printf("Load Test Configuration:\n")
	fmt.Printf("  URL: %s\n", url)
	fmt.Printf("  Threads: %d\n", threads)
	fmt.Printf("  Subjects: %d\n", subjects)
	fmt.Printf("  Duration: %v\n\n", duration)

	// Инициализация
	latencies = make([]int64, 0, 10000)
	startTime := time.Now()
	endTime := startTime.Add(duration)

	// Каждый носимый датчик принадлежит одному потоку, показания субъекта идут по порядку
	subjectsPerThread := subjects / threads
	if subjectsPerThread == 0 {
		subjectsPerThread = 1
	}

	var wg sync.WaitGroup
	for t := 0; t < threads; t++ {
		devices := make([]*wearable, subjectsPerThread)
		for i := range devices {
			devices[i] = newWearable(fmt.Sprintf("user_%03d", t*subjectsPerThread+i+1), int64(t*subjectsPerThread+i))
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(url, devices, endTime)
		}()
	}

	// Ожидание завершения
	wg.Wait()
	totalDuration := time.Since(startTime)

	// Вычисление статистики
	printResults(totalDuration)
}

func worker(url string, devices []*wearable, endTime time.Time) {
	// Оптимизированный HTTP клиент с connection pooling
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	// Отправляем запросы без задержек для максимальной нагрузки
	for i := 0; time.Now().Before(endTime); i++ {
		sendRequest(client, url, devices[i%len(devices)])
	}
}

var activityModifiers = map[string]int{
	"sleeping": -15,
	"resting":  0,
	"walking":  20,
	"active":   40,
}

var activityStates = []string{"resting", "walking", "active", "sleeping"}

type wearable struct {
	userID   string
	rnd      *rand.Rand
	activity string
	battery  int
	lat, lng float64
}

func newWearable(userID string, seed int64) *wearable {
	return &wearable{
		userID:   userID,
		rnd:      rand.New(rand.NewSource(seed)),
		activity: "resting",
		battery:  100,
		lat:      28.6139,
		lng:      77.2090,
	}
}

func (w *wearable) uniform(lo, hi float64) float64 {
	return lo + w.rnd.Float64()*(hi-lo)
}

func (w *wearable) heartRate() int {
	hr := 72 + activityModifiers[w.activity] + w.rnd.Intn(14) - 5
	if hr < 50 {
		hr = 50
	}
	if hr > 180 {
		hr = 180
	}

	// редкие аномалии пульса, 5%
	if w.rnd.Float64() < 0.05 {
		if w.rnd.Float64() < 0.5 {
			hr = 45 + w.rnd.Intn(11)
		} else {
			hr = 100 + w.rnd.Intn(21)
		}
	}
	return hr
}

func (w *wearable) spo2() float64 {
	v := math.Max(85, math.Min(100, 98.5+w.uniform(-1.5, 1.0)))
	if w.rnd.Float64() < 0.03 {
		v = w.uniform(88, 94)
	}
	return math.Round(v*10) / 10
}

func (w *wearable) temperature() float64 {
	v := 98.6 + w.uniform(-0.8, 1.2)
	if w.rnd.Float64() < 0.02 {
		v = w.uniform(100.4, 102.5)
	}
	return math.Round(v*10) / 10
}

func (w *wearable) next() models.Reading {
	if w.rnd.Float64() < 0.1 {
		w.activity = activityStates[w.rnd.Intn(len(activityStates))]
	}
	if w.rnd.Float64() < 0.01 && w.battery > 0 {
		w.battery--
	}

	hr := w.heartRate()
	spo2 := w.spo2()
	temp := w.temperature()
	fall := w.rnd.Float64() < 0.001
	battery := w.battery

	return models.Reading{
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
		UserID:        w.userID,
		HeartRate:     &hr,
		SpO2:          &spo2,
		Temperature:   &temp,
		FallDetected:  &fall,
		ActivityLevel: w.activity,
		BatteryLevel:  &battery,
		Location: &models.Location{
			Latitude:  math.Round((w.lat+w.uniform(-0.001, 0.001))*1e6) / 1e6,
			Longitude: math.Round((w.lng+w.uniform(-0.001, 0.001))*1e6) / 1e6,
		},
	}
}

func sendRequest(client *http.Client, url string, device *wearable) {
	reading := device.next()

	jsonData, _ := json.Marshal(reading)
	req, _ := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(start)

	atomic.AddInt64(&requestCount, 1)

	if err != nil || resp.StatusCode/100 != 2 {
		atomic.AddInt64(&failCount, 1)
		if resp != nil {
			resp.Body.Close()
		}
		return
	}

	atomic.AddInt64(&successCount, 1)
	resp.Body.Close()

	// Обновление статистики задержек
	latencyNs := latency.Nanoseconds()
	atomic.AddInt64(&totalLatency, latencyNs)

	for {
		oldMin := atomic.LoadInt64(&minLatency)
		if latencyNs >= oldMin {
			break
		}
		if atomic.CompareAndSwapInt64(&minLatency, oldMin, latencyNs) {
			break
		}
	}

	for {
		oldMax := atomic.LoadInt64(&maxLatency)
		if latencyNs <= oldMax {
			break
		}
		if atomic.CompareAndSwapInt64(&maxLatency, oldMax, latencyNs) {
			break
		}
	}

	latenciesLock.Lock()
	latencies = append(latencies, latencyNs)
	latenciesLock.Unlock()
}

func printResults(duration time.Duration) {
	total := atomic.LoadInt64(&requestCount)
	success := atomic.LoadInt64(&successCount)
	failed := atomic.LoadInt64(&failCount)
	totalLat := atomic.LoadInt64(&totalLatency)
	minLat := atomic.LoadInt64(&minLatency)
	maxLat := atomic.LoadInt64(&maxLatency)

	avgLatency := time.Duration(0)
	if success > 0 {
		avgLatency = time.Duration(totalLat / success)
	}

	// Вычисление перцентилей
	latenciesLock.Lock()
	latenciesCopy := make([]int64, len(latencies))
	copy(latenciesCopy, latencies)
	latenciesLock.Unlock()

	var p50, p95, p99 time.Duration
	if len(latenciesCopy) > 0 {
		// Сортировка для перцентилей
		sort.Slice(latenciesCopy, func(i, j int) bool {
			return latenciesCopy[i] < latenciesCopy[j]
		})

		p50Idx := len(latenciesCopy) * 50 / 100
		p95Idx := len(latenciesCopy) * 95 / 100
		p99Idx := len(latenciesCopy) * 99 / 100

		if p50Idx < len(latenciesCopy) {
			p50 = time.Duration(latenciesCopy[p50Idx])
		}
		if p95Idx < len(latenciesCopy) {
			p95 = time.Duration(latenciesCopy[p95Idx])
		}
		if p99Idx < len(latenciesCopy) {
			p99 = time.Duration(latenciesCopy[p99Idx])
		}
	}

	rps := float64(total) / duration.Seconds()

	fmt.Println("\n==========================================")
	fmt.Println("Load Test Results")
	fmt.Println("==========================================")
	fmt.Printf("Duration:        %v\n", duration)
	fmt.Printf("Total Requests: %d\n", total)
	fmt.Printf("Successful:     %d\n", success)
	fmt.Printf("Failed:         %d\n", failed)
	fmt.Printf("Success Rate:   %.2f%%\n", float64(success)/float64(total)*100)
	fmt.Printf("Requests/sec:   %.2f\n", rps)
	fmt.Println("\nLatency Statistics:")
	fmt.Printf("  Min:          %v\n", time.Duration(minLat))
	fmt.Printf("  Max:          %v\n", time.Duration(maxLat))
	fmt.Printf("  Average:      %v\n", avgLatency)
	if p50 > 0 {
		fmt.Printf("  p50:          %v\n", p50)
	}
	if p95 > 0 {
		fmt.Printf("  p95:          %v\n", p95)
	}
	if p99 > 0 {
		fmt.Printf("  p99:          %v\n", p99)
	}
	fmt.Println("==========================================")
}
