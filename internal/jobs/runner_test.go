package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingJob struct {
	release chan struct{}
	started chan struct{}
	runs    atomic.Int32
}

func (b *blockingJob) ID() string       { return "blocking" }
func (b *blockingJob) Schedule() string { return "@every 1h" }
func (b *blockingJob) Run() {
	b.runs.Add(1)
	b.started <- struct{}{}
	<-b.release
}

func TestTaskExecutor_SkipsOverlappingRuns(t *testing.T) {
	job := &blockingJob{release: make(chan struct{}), started: make(chan struct{}, 1)}
	ex := NewTaskExecutor(job)

	done := make(chan bool)
	go func() { done <- ex.runOnce(job) }()
	<-job.started

	assert.False(t, ex.runOnce(job))

	close(job.release)
	assert.True(t, <-done)
	assert.EqualValues(t, 1, job.runs.Load())

	go func() { done <- ex.runOnce(job) }()
	<-job.started
	assert.True(t, <-done)
	assert.EqualValues(t, 2, job.runs.Load())
}

func TestTaskExecutor_InvalidSchedule(t *testing.T) {
	ex := NewTaskExecutor(NewTemplateWarmupTask("not a schedule", nil))
	assert.Error(t, ex.Run())
}

type fakeWarmer struct {
	calls atomic.Int32
	err   error
}

func (f *fakeWarmer) Warmup(ctx context.Context) (int, error) {
	f.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("no deadline")
	}
	return 3, f.err
}

func TestTemplateWarmupTask_Run(t *testing.T) {
	w := &fakeWarmer{}
	task := NewTemplateWarmupTask("@every 1m", w)
	assert.Equal(t, "template_warmup", task.ID())
	assert.Equal(t, "@every 1m", task.Schedule())

	task.Run()
	assert.EqualValues(t, 1, w.calls.Load())

	w.err = errors.New("redis down")
	task.Run()
	assert.EqualValues(t, 2, w.calls.Load())
}

func TestTaskExecutor_RunsScheduledJob(t *testing.T) {
	w := &fakeWarmer{}
	ex := NewTaskExecutor(NewTemplateWarmupTask("@every 1s", w))
	require.NoError(t, ex.Run())
	defer ex.Stop()

	assert.Eventually(t, func() bool { return w.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}
