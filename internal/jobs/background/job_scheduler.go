package background

import (
	"context"
	"log"
	"sync"
	"time"

	"hauntedadmin/internal/caching"
	"hauntedadmin/internal/jobs"
	"hauntedadmin/internal/repositories"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler manages the recurring back-office jobs.
type JobScheduler struct {
	scheduler      gocron.Scheduler
	expiryAlertSvc *jobs.ExpiryAlertService
	planRepo       repositories.PlanRepository
	cacheSvc       caching.CacheService
	registered     map[string]gocron.Job
	mu             sync.RWMutex
}

func NewJobScheduler(expiryAlertSvc *jobs.ExpiryAlertService, planRepo repositories.PlanRepository, cacheSvc caching.CacheService) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:      scheduler,
		expiryAlertSvc: expiryAlertSvc,
		planRepo:       planRepo,
		cacheSvc:       cacheSvc,
		registered:     make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	// Membership expiry sweep - nightly at 02:00. Alerts are deduplicated
	// per member and day, so the immediate startup run is safe.
	sweepJob, err := js.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(2, 0, 0))),
		gocron.NewTask(js.runExpirySweep),
		gocron.WithName("membership-expiry-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		log.Printf("Failed to create expiry sweep job: %v", err)
	} else {
		js.registered["expiry-sweep"] = sweepJob
	}

	// Plan cache warmer - every hour
	planCacheJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.warmPlanCache),
		gocron.WithName("plan-cache-warmer"),
	)
	if err != nil {
		log.Printf("Failed to create plan cache job: %v", err)
	} else {
		js.registered["plan-cache"] = planCacheJob
	}

	log.Printf("Registered %d background jobs", len(js.registered))
}

func (js *JobScheduler) runExpirySweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := js.expiryAlertSvc.Sweep(ctx); err != nil {
		log.Printf("Membership expiry sweep failed: %v", err)
	}
}

func (js *JobScheduler) warmPlanCache() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	plans, err := js.planRepo.List(ctx, false)
	if err != nil {
		log.Printf("Plan cache warm failed: %v", err)
		return
	}
	if err := js.cacheSvc.SetPlans(ctx, plans, 2*time.Hour); err != nil {
		log.Printf("Failed to store warmed plan cache: %v", err)
	}
}

// JobNames lists the registered jobs, for the detailed health endpoint.
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.registered))
	for name := range js.registered {
		names = append(names, name)
	}
	return names
}
