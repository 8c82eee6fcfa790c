package analytics

import (
	"Linkboard-Backend/internal/domain"
	"Linkboard-Backend/internal/geoip"
	"Linkboard-Backend/internal/repository"
	"Linkboard-Backend/pkg/useragent"
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ClickJob represents one click to be recorded asynchronously. Exactly one
// of LinkID/ListID is set: affiliate link clicks and curated list clicks go
// through the same pipeline but end up in different tables.
type ClickJob struct {
	LinkID    int64
	ListID    int64
	ListURLID *int64
	IPAddress string
	UserAgent string
	Referrer  *string
	ClickedAt time.Time

	// location is filled by the worker on the first attempt so that insert
	// retries do not re-query the external lookup.
	location geoip.Location
}

// ProcessorConfig holds configuration for the click processor.
type ProcessorConfig struct {
	WorkerCount     int           // Number of worker goroutines
	BufferSize      int           // Size of the job queue buffer
	RetryAttempts   int           // Number of retry attempts for failed inserts
	RetryDelay      time.Duration // Base delay between retries
	ShutdownTimeout time.Duration // Time to wait for graceful shutdown
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() ProcessorConfig {
	return ProcessorConfig{
		WorkerCount:     3,
		BufferSize:      1000,
		RetryAttempts:   3,
		RetryDelay:      time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Processor records clicks off the redirect path: workers pick jobs from a
// bounded queue, enrich them with geolocation and device/browser metadata
// and insert the click row with retries. Geolocation and the insert both
// happen here, so the only write the redirect itself waits for is the
// counter increment. Failures are logged and dropped, never surfaced to
// the redirect.
type Processor struct {
	config   ProcessorConfig
	storage  repository.Storage
	geo      *geoip.Client
	osParser *useragent.OSParser
	log      *zap.Logger
	jobQueue chan *ClickJob
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	mu       sync.RWMutex
}

// NewProcessor creates a new click processor. geo and osParser may be nil;
// the corresponding metadata is then recorded as null.
func NewProcessor(storage repository.Storage, geo *geoip.Client, osParser *useragent.OSParser, log *zap.Logger, config ProcessorConfig) *Processor {
	ctx, cancel := context.WithCancel(context.Background())

	return &Processor{
		config:   config,
		storage:  storage,
		geo:      geo,
		osParser: osParser,
		log:      log,
		jobQueue: make(chan *ClickJob, config.BufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins processing click jobs.
func (p *Processor) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("processor already started")
	}

	p.log.Info("starting click processor",
		zap.Int("workers", p.config.WorkerCount),
		zap.Int("buffer_size", p.config.BufferSize),
		zap.Int("retry_attempts", p.config.RetryAttempts),
	)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.started = true
	return nil
}

// Stop gracefully shuts down the processor, draining queued jobs up to the
// shutdown timeout.
func (p *Processor) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return fmt.Errorf("processor not started")
	}

	p.log.Info("stopping click processor", zap.Int("queued_jobs", len(p.jobQueue)))

	close(p.jobQueue)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.log.Info("click processor stopped gracefully")
	case <-time.After(p.config.ShutdownTimeout):
		p.cancel()
		p.log.Warn("click processor shutdown timeout reached")
		return fmt.Errorf("shutdown timeout reached")
	}

	p.cancel()
	p.started = false
	return nil
}

// Submit enqueues a click for asynchronous recording. A full queue drops
// the click: losing analytics is preferable to blocking the redirect.
func (p *Processor) Submit(job *ClickJob) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.started {
		return fmt.Errorf("processor not started")
	}

	select {
	case p.jobQueue <- job:
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("processor is shutting down")
	default:
		p.log.Error("click queue is full, dropping click",
			zap.Int64("link_id", job.LinkID),
			zap.Int64("list_id", job.ListID),
			zap.Int("queue_size", len(p.jobQueue)),
		)
		return fmt.Errorf("click queue is full")
	}
}

// worker processes click jobs with retry logic.
func (p *Processor) worker(workerID int) {
	defer p.wg.Done()

	log := p.log.With(zap.Int("worker_id", workerID))
	log.Debug("click worker started")

	for job := range p.jobQueue {
		p.processWithRetry(log, job)
	}

	log.Debug("click worker stopped")
}

// processWithRetry records a single click with bounded retries and
// exponential backoff.
func (p *Processor) processWithRetry(log *zap.Logger, job *ClickJob) {
	var lastErr error

	for attempt := 1; attempt <= p.config.RetryAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := p.process(ctx, job, attempt == 1)
		cancel()

		if err == nil {
			if attempt > 1 {
				log.Info("click recorded after retry",
					zap.Int64("link_id", job.LinkID),
					zap.Int64("list_id", job.ListID),
					zap.Int("attempt", attempt),
				)
			}
			return
		}

		lastErr = err
		log.Warn("click recording failed",
			zap.Int64("link_id", job.LinkID),
			zap.Int64("list_id", job.ListID),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.config.RetryAttempts),
			zap.Error(err),
		)

		if attempt == p.config.RetryAttempts {
			break
		}

		delay := p.config.RetryDelay * time.Duration(1<<(attempt-1))

		select {
		case <-time.After(delay):
		case <-p.ctx.Done():
			log.Info("worker shutdown during retry delay")
			return
		}
	}

	log.Error("click dropped after all retries",
		zap.Int64("link_id", job.LinkID),
		zap.Int64("list_id", job.ListID),
		zap.Int("attempts", p.config.RetryAttempts),
		zap.Error(lastErr),
	)
}

// process enriches the job and inserts the click row. Geolocation runs only
// on the first attempt and degrades to null country/city on any failure,
// which never counts as a recording failure.
func (p *Processor) process(ctx context.Context, job *ClickJob, firstAttempt bool) error {
	if firstAttempt {
		job.location = p.geo.Lookup(ctx, job.IPAddress)
	}

	device := useragent.ClassifyDevice(job.UserAgent)
	browser := useragent.ClassifyBrowser(job.UserAgent)
	osFamily := p.osParser.OSFamily(job.UserAgent)

	var userAgent *string
	if job.UserAgent != "" {
		userAgent = &job.UserAgent
	}

	var ipAddress *net.IP
	if ip := net.ParseIP(job.IPAddress); ip != nil {
		ipAddress = &ip
	}

	clickedAt := job.ClickedAt
	if clickedAt.IsZero() {
		clickedAt = time.Now()
	}

	if job.LinkID > 0 {
		click := &domain.Click{
			LinkID:    job.LinkID,
			IPAddress: ipAddress,
			UserAgent: userAgent,
			Referrer:  job.Referrer,
			Country:   job.location.Country,
			City:      job.location.City,
			Device:    device,
			Browser:   browser,
			OS:        osFamily,
			ClickedAt: clickedAt,
		}
		if err := p.storage.CreateClick(ctx, click); err != nil {
			return fmt.Errorf("failed to record click: %w", err)
		}
		return nil
	}

	listClick := &domain.ListClick{
		ListID:    job.ListID,
		ListURLID: job.ListURLID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		Referrer:  job.Referrer,
		Country:   job.location.Country,
		City:      job.location.City,
		Device:    device,
		Browser:   browser,
		OS:        osFamily,
		ClickedAt: clickedAt,
	}
	if err := p.storage.CreateListClick(ctx, listClick); err != nil {
		return fmt.Errorf("failed to record list click: %w", err)
	}
	return nil
}

// GetStats returns processor statistics.
func (p *Processor) GetStats() map[string]interface{} {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return map[string]interface{}{
		"started":        p.started,
		"queue_length":   len(p.jobQueue),
		"queue_capacity": cap(p.jobQueue),
		"worker_count":   p.config.WorkerCount,
		"retry_attempts": p.config.RetryAttempts,
	}
}
