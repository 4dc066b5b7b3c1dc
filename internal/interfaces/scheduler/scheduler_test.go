package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestParseScheduleTime(t *testing.T) {
	tests := []struct {
		input   string
		want    ScheduleTime
		wantErr bool
	}{
		{"06:00", ScheduleTime{Hour: 6, Minute: 0}, false},
		{"23:59", ScheduleTime{Hour: 23, Minute: 59}, false},
		{"0:5", ScheduleTime{Hour: 0, Minute: 5}, false},
		{"24:00", ScheduleTime{}, true},
		{"12:60", ScheduleTime{}, true},
		{"noon", ScheduleTime{}, true},
		{"", ScheduleTime{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseScheduleTime(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseScheduleTime(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseScheduleTime(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestShouldRun_OncePerMinute(t *testing.T) {
	s, err := New(Config{
		ScheduleTimes: []string{"06:00"},
		WorkerCount:   1,
		QueueSize:     1,
	})
	if err != nil {
		t.Fatalf("failed to create scheduler: %v", err)
	}

	at := time.Date(2026, 3, 1, 6, 0, 30, 0, time.UTC)

	if !s.shouldRun(at) {
		t.Error("expected first check at scheduled minute to fire")
	}
	if s.shouldRun(at.Add(10 * time.Second)) {
		t.Error("expected second check within the same minute to be suppressed")
	}
	if s.shouldRun(at.Add(time.Minute)) {
		t.Error("expected 06:01 to not match the 06:00 schedule")
	}
	if !s.shouldRun(at.AddDate(0, 0, 1)) {
		t.Error("expected next day's 06:00 to fire again")
	}
}

func TestNew_RequiresScheduleTime(t *testing.T) {
	if _, err := New(Config{WorkerCount: 1}); err == nil {
		t.Error("expected error with no schedule times")
	}
}

type countingJob struct {
	executed *atomic.Int64
}

func (j *countingJob) Execute(ctx context.Context) error {
	j.executed.Add(1)
	return nil
}

func (j *countingJob) UserID() string      { return "1" }
func (j *countingJob) Description() string { return "counting job" }

func TestWorkerPool_ProcessesJobs(t *testing.T) {
	pool := NewWorkerPool(2, 0, 10)
	pool.Start()

	var executed atomic.Int64
	for i := 0; i < 5; i++ {
		if err := pool.Submit(&countingJob{executed: &executed}); err != nil {
			t.Fatalf("failed to submit job: %v", err)
		}
	}

	pool.Shutdown()

	if got := executed.Load(); got != 5 {
		t.Errorf("expected 5 jobs executed, got %d", got)
	}
}

func TestWorkerPool_FullQueueDropsJob(t *testing.T) {
	// Pool is never started, so nothing drains the queue.
	pool := NewWorkerPool(1, 0, 1)

	var executed atomic.Int64
	if err := pool.Submit(&countingJob{executed: &executed}); err != nil {
		t.Fatalf("first submit should fill the queue: %v", err)
	}
	if err := pool.Submit(&countingJob{executed: &executed}); err == nil {
		t.Error("expected second submit to report a dropped job")
	}
}
