package etl

import (
	"context"
	"testing"
	"time"

	"bankscap/internal/domain"
	"bankscap/internal/progress"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func failingPipelineFactory() PipelineFactory {
	return func() *Pipeline {
		rates := new(MockRateProvider)
		rates.On("Rates", mock.Anything).Return(nil, domain.ErrConfiguration)
		return NewPipeline(rates, new(MockExtractor), new(MockTransformer), new(MockLoader), testPipelineOptions, progress.Discard())
	}
}

func succeedingPipelineFactory() PipelineFactory {
	return func() *Pipeline {
		tbl := mustTable([]string{"A", "B"}, []float64{1, 2})
		rates := new(MockRateProvider)
		extractor := new(MockExtractor)
		transformer := new(MockTransformer)
		loader := new(MockLoader)
		rates.On("Rates", mock.Anything).Return(mustRates(map[string]float64{"GBP": 0.8}), nil)
		extractor.On("Extract", mock.Anything, mock.Anything).Return(tbl, nil)
		transformer.On("Transform", tbl, mock.Anything, mock.Anything).Return(tbl, nil)
		loader.On("Load", mock.Anything, tbl).Return(nil)
		return NewPipeline(rates, extractor, transformer, loader, testPipelineOptions, progress.Discard())
	}
}

func TestNewScheduler_Constructs(t *testing.T) {
	s := NewScheduler(failingPipelineFactory(), 10*time.Second)
	require.NotNil(t, s)
	require.Nil(t, s.sched)
}

func TestNewScheduler_UsesProvidedInterval(t *testing.T) {
	s := NewScheduler(failingPipelineFactory(), 42*time.Second)
	require.Equal(t, 42*time.Second, s.interval)
}

func TestNewScheduler_DefaultsIntervalWhenInvalid(t *testing.T) {
	s := NewScheduler(failingPipelineFactory(), 0)
	require.Equal(t, time.Hour, s.interval)
}

func TestScheduler_Shutdown_NoScheduler_ReturnsNil(t *testing.T) {
	s := NewScheduler(failingPipelineFactory(), 10*time.Second)
	require.NoError(t, s.Shutdown())
	require.Nil(t, s.sched)
}

func TestScheduler_LastRun_EmptyBeforeFirstRun(t *testing.T) {
	s := NewScheduler(failingPipelineFactory(), 10*time.Second)
	_, ok := s.LastRun()
	require.False(t, ok)
}

func TestScheduler_RunOnce_RecordsSuccess(t *testing.T) {
	s := NewScheduler(succeedingPipelineFactory(), 10*time.Second)
	s.runOnce(context.Background())

	status, ok := s.LastRun()
	require.True(t, ok)
	require.Equal(t, domain.StateDone, status.State)
	require.Equal(t, 2, status.Rows)
	require.Empty(t, status.Error)
	require.NotEmpty(t, status.ExecID)
	require.False(t, status.FinishedAt.IsZero())
}

func TestScheduler_RunOnce_RecordsFailure(t *testing.T) {
	s := NewScheduler(failingPipelineFactory(), 10*time.Second)
	s.runOnce(context.Background())

	status, ok := s.LastRun()
	require.True(t, ok)
	require.Equal(t, domain.StateFailed, status.State)
	require.Zero(t, status.Rows)
	require.Contains(t, status.Error, "invalid configuration")
}

func TestScheduler_RunOnce_FreshPipelinePerRun(t *testing.T) {
	s := NewScheduler(succeedingPipelineFactory(), 10*time.Second)
	s.runOnce(context.Background())
	first, _ := s.LastRun()
	s.runOnce(context.Background())
	second, _ := s.LastRun()

	require.Equal(t, domain.StateDone, second.State)
	require.NotEqual(t, first.ExecID, second.ExecID)
}

func TestScheduler_Start_RunsImmediately(t *testing.T) {
	s := NewScheduler(succeedingPipelineFactory(), time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	require.Eventually(t, func() bool {
		_, ok := s.LastRun()
		return ok
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Shutdown())
}

func TestScheduler_Start_And_ContextCancel_ShutsDown(t *testing.T) {
	s := NewScheduler(failingPipelineFactory(), 10*time.Second)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Start(ctx))
	s.mu.RLock()
	require.NotNil(t, s.sched)
	s.mu.RUnlock()

	cancel()

	require.Eventually(t, func() bool {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.sched == nil
	}, 2*time.Second, 10*time.Millisecond, "expected scheduler to be shutdown after ctx cancel")
}

func TestScheduler_Shutdown_AfterStart_Idempotent(t *testing.T) {
	s := NewScheduler(failingPipelineFactory(), 10*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))

	require.NoError(t, s.Shutdown())
	require.Nil(t, s.sched)

	require.NoError(t, s.Shutdown())
}

func TestScheduler_Trigger_NotStarted(t *testing.T) {
	s := NewScheduler(failingPipelineFactory(), time.Hour)
	require.ErrorIs(t, s.Trigger(), ErrSchedulerStopped)
}

func TestScheduler_Trigger_RunsAgain(t *testing.T) {
	s := NewScheduler(succeedingPipelineFactory(), time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	require.Eventually(t, func() bool {
		_, ok := s.LastRun()
		return ok
	}, 2*time.Second, 10*time.Millisecond)
	first, _ := s.LastRun()

	require.NoError(t, s.Trigger())
	require.Eventually(t, func() bool {
		last, _ := s.LastRun()
		return last.ExecID != first.ExecID
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.Shutdown())
	require.ErrorIs(t, s.Trigger(), ErrSchedulerStopped)
}
