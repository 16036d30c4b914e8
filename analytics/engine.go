package analytics

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"vitals-monitor/models"
)

var (
	ErrQueueFull    = errors.New("analytics: reading queue is full")
	ErrEngineClosed = errors.New("analytics: engine is closed")
)

type ResultStore interface {
	SaveAnalysis(ctx context.Context, userID string, result models.AnalysisResult) error
}

type AnomalyCallback func(result models.AnalysisResult)

type EngineOptions struct {
	Workers     int           `mapstructure:"workers"`
	QueueSize   int           `mapstructure:"queue_size"`
	SaveTimeout time.Duration `mapstructure:"save_timeout"`
}

type job struct {
	reading models.Reading
	reply   chan models.AnalysisResult
}

// AnalyticsEngine keeps one Analyzer per subject. Every subject is pinned to
// one worker, so its Analyzer is never used from two goroutines at once.
type AnalyticsEngine struct {
	cfg         Config
	store       ResultStore
	logger      *zap.Logger
	onAnomaly   AnomalyCallback
	saveTimeout time.Duration

	mu        sync.RWMutex
	analyzers map[string]*Analyzer

	shards  []chan job
	workers sync.WaitGroup
	saves   sync.WaitGroup

	closeMu sync.RWMutex
	closed  bool
}

func NewAnalyticsEngine(cfg Config, opts EngineOptions, store ResultStore, logger *zap.Logger, onAnomaly AnomalyCallback) *AnalyticsEngine {
	if logger == nil {
		logger = zap.NewNop()
	}

	numWorkers := opts.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU() * 2
		if numWorkers < 4 {
			numWorkers = 4
		}
		if numWorkers > 16 {
			numWorkers = 16
		}
	}

	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = 1000
	}

	saveTimeout := opts.SaveTimeout
	if saveTimeout <= 0 {
		saveTimeout = 2 * time.Second
	}

	engine := &AnalyticsEngine{
		cfg:         cfg,
		store:       store,
		logger:      logger,
		onAnomaly:   onAnomaly,
		saveTimeout: saveTimeout,
		analyzers:   make(map[string]*Analyzer),
		shards:      make([]chan job, numWorkers),
	}

	logger.Info("starting analytics workers", zap.Int("workers", numWorkers), zap.Int("queue_size", queueSize))
	for i := range engine.shards {
		engine.shards[i] = make(chan job, queueSize)
		engine.workers.Add(1)
		go engine.processReadings(engine.shards[i])
	}

	return engine
}

// ProcessReading enqueues the reading without waiting for the result.
func (ae *AnalyticsEngine) ProcessReading(reading models.Reading) error {
	if err := reading.Validate(); err != nil {
		return err
	}
	err := ae.enqueue(context.Background(), job{reading: reading}, false)
	if errors.Is(err, ErrQueueFull) {
		ae.logger.Warn("reading queue is full, dropping reading", zap.String("user_id", reading.Subject()))
	}
	return err
}

// Analyze runs the reading through the subject's analyzer and waits for the
// result. If ctx ends after the reading was queued, it is still analysed and
// recorded in the subject's history.
func (ae *AnalyticsEngine) Analyze(ctx context.Context, reading models.Reading) (models.AnalysisResult, error) {
	if err := reading.Validate(); err != nil {
		return models.AnalysisResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.AnalysisResult{}, err
	}

	j := job{reading: reading, reply: make(chan models.AnalysisResult, 1)}
	if err := ae.enqueue(ctx, j, true); err != nil {
		return models.AnalysisResult{}, err
	}

	select {
	case result := <-j.reply:
		return result, nil
	case <-ctx.Done():
		return models.AnalysisResult{}, ctx.Err()
	}
}

func (ae *AnalyticsEngine) enqueue(ctx context.Context, j job, block bool) error {
	ae.closeMu.RLock()
	defer ae.closeMu.RUnlock()

	if ae.closed {
		return ErrEngineClosed
	}

	shard := ae.shardFor(j.reading.Subject())
	if !block {
		select {
		case shard <- j:
			return nil
		default:
			return ErrQueueFull
		}
	}

	select {
	case shard <- j:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (ae *AnalyticsEngine) shardFor(userID string) chan job {
	return ae.shards[xxhash.Sum64String(userID)%uint64(len(ae.shards))]
}

func (ae *AnalyticsEngine) processReadings(jobs <-chan job) {
	defer ae.workers.Done()
	for j := range jobs {
		result := ae.processReading(j.reading)
		if j.reply != nil {
			j.reply <- result
		}
	}
}

func (ae *AnalyticsEngine) processReading(reading models.Reading) models.AnalysisResult {
	userID := reading.Subject()
	result := ae.analyzerFor(userID).Analyze(reading)

	if ae.store != nil {
		ae.saves.Add(1)
		go func(res models.AnalysisResult) {
			defer ae.saves.Done()
			ctx, cancel := context.WithTimeout(context.Background(), ae.saveTimeout)
			defer cancel()
			if err := ae.store.SaveAnalysis(ctx, userID, res); err != nil {
				ae.logger.Error("failed to save analysis", zap.String("user_id", userID), zap.Error(err))
			}
		}(result)
	}

	if result.IsAnomalous() {
		ae.logger.Warn("anomaly detected",
			zap.String("user_id", userID),
			zap.String("status", string(result.Status)),
			zap.String("risk_level", string(result.RiskLevel)),
			zap.Int("anomaly_count", result.AnomalyCount),
		)

		if ae.onAnomaly != nil {
			ae.onAnomaly(result)
		}
	}

	return result
}

func (ae *AnalyticsEngine) analyzerFor(userID string) *Analyzer {
	ae.mu.RLock()
	analyzer, exists := ae.analyzers[userID]
	ae.mu.RUnlock()
	if exists {
		return analyzer
	}

	ae.mu.Lock()
	defer ae.mu.Unlock()
	if analyzer, exists = ae.analyzers[userID]; !exists {
		analyzer = NewAnalyzer(ae.cfg)
		ae.analyzers[userID] = analyzer
		ae.logger.Debug("tracking new subject", zap.String("user_id", userID))
	}
	return analyzer
}

func (ae *AnalyticsEngine) Subjects() int {
	ae.mu.RLock()
	defer ae.mu.RUnlock()
	return len(ae.analyzers)
}

// Close stops accepting readings, drains queued ones and waits for pending
// saves.
func (ae *AnalyticsEngine) Close() {
	ae.closeMu.Lock()
	if ae.closed {
		ae.closeMu.Unlock()
		return
	}
	ae.closed = true
	for _, shard := range ae.shards {
		close(shard)
	}
	ae.closeMu.Unlock()

	ae.workers.Wait()
	ae.saves.Wait()
}
