package cron

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/angelmondragon/dimensionalz-backend/pkg/logger"
	"github.com/angelmondragon/dimensionalz-backend/pkg/metrics"
	"github.com/angelmondragon/dimensionalz-backend/pkg/redis"
)

type fakeLock struct {
	held     bool
	releases int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.held = false
	f.releases++
	return nil
}

type testJob struct {
	name string
	err  error

	mu   sync.Mutex
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runs++
	return t.err
}

func (t *testJob) runsSnapshot() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runs
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

func TestServiceRunCycleRunsAllJobsEvenOnFailure(t *testing.T) {
	success := &testJob{name: "success"}
	failure := &testJob{name: "fail", err: errors.New("boom")}
	reg := prometheus.NewRegistry()
	lock := &fakeLock{}
	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(success, failure),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(reg),
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if success.runs != 1 || failure.runs != 1 {
		t.Fatalf("expected both jobs once, got %d and %d", success.runs, failure.runs)
	}
	if lock.releases != 1 || lock.held {
		t.Fatalf("expected lock released once")
	}
	count, err := testutil.GatherAndCount(reg, "job_failure", "job_success")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected one success and one failure series, got %d", count)
	}
}

func TestServiceSkipsCycleWhenLockHeld(t *testing.T) {
	job := &testJob{name: "sweeper"}
	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     &fakeLock{held: true},
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("job ran without the lock")
	}
}

func TestServiceRunStopsOnCancel(t *testing.T) {
	job := &testJob{name: "sweeper"}
	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     &fakeLock{},
		Interval: time.Hour,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- service.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for job.runsSnapshot() == 0 {
		select {
		case <-deadline:
			t.Fatal("first cycle never ran")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRedisLockTreatsHeldAsBusy(t *testing.T) {
	store := &fakeLockStore{}
	lock, err := NewRedisLock(store, "cron-worker", 0)
	if err != nil {
		t.Fatalf("NewRedisLock: %v", err)
	}
	ok, err := lock.Acquire(context.Background())
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	other, _ := NewRedisLock(store, "cron-worker", 0)
	ok, err = other.Acquire(context.Background())
	if err != nil || ok {
		t.Fatalf("second acquire: ok=%v err=%v", ok, err)
	}
	if err := other.Release(context.Background()); err != nil {
		t.Fatalf("release by non-owner: %v", err)
	}
	if store.owner == "" {
		t.Fatal("non-owner release dropped the lock")
	}
	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("release: %v", err)
	}
	if store.owner != "" {
		t.Fatal("owner release kept the lock")
	}
	if store.ttl != defaultLockTTL {
		t.Fatalf("expected default ttl, got %s", store.ttl)
	}
}

type fakeLockStore struct {
	owner string
	ttl   time.Duration
}

func (f *fakeLockStore) AcquireLock(_ context.Context, _ string, token string, ttl time.Duration) error {
	if f.owner != "" {
		return redis.ErrLockHeld
	}
	f.owner = token
	f.ttl = ttl
	return nil
}

func (f *fakeLockStore) ReleaseLock(_ context.Context, _ string, token string) error {
	if f.owner == token {
		f.owner = ""
	}
	return nil
}
