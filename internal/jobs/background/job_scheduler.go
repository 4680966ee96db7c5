package background

import (
	"context"
	"log"
	"sync"
	"time"

	"visionm/internal/analytics"
	"visionm/internal/caching"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler manages the recurring background work: workspace analytics
// refresh and cache health probing.
type JobScheduler struct {
	scheduler    gocron.Scheduler
	analyticsSvc *analytics.AnalyticsService
	cacheSvc     caching.CacheService
	jobs         map[string]gocron.Job
	mu           sync.RWMutex
}

func NewJobScheduler(analyticsSvc *analytics.AnalyticsService, cacheSvc caching.CacheService) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:    scheduler,
		analyticsSvc: analyticsSvc,
		cacheSvc:     cacheSvc,
		jobs:         make(map[string]gocron.Job),
	}
	js.registerJobs()
	return js, nil
}

func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	js.mu.Lock()
	defer js.mu.Unlock()

	analyticsJob, err := js.scheduler.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(js.refreshWorkspaceAnalytics),
		gocron.WithName("workspace-analytics-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create analytics job: %v", err)
	} else {
		js.jobs["analytics"] = analyticsJob
	}

	cacheJob, err := js.scheduler.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(js.probeCache),
		gocron.WithName("cache-health-probe"),
	)
	if err != nil {
		log.Printf("Failed to create cache probe job: %v", err)
	} else {
		js.jobs["cache-probe"] = cacheJob
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

func (js *JobScheduler) refreshWorkspaceAnalytics() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := js.analyticsSvc.RefreshAll(ctx); err != nil {
		log.Printf("Workspace analytics refresh failed: %v", err)
	}
}

func (js *JobScheduler) probeCache() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := js.cacheSvc.Ping(ctx); err != nil {
		log.Printf("Cache health probe failed: %v", err)
	}
}
