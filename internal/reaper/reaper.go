package reaper

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -destination=./reaper_mock.go -package=reaper -source=reaper.go

const (
	reaperFile = ".reaper.gc.log"

	defaultWorkers      = 4
	defaultQueueSize    = 1024
	defaultTaskTimeout  = 5 * time.Second
	defaultDrainTimeout = 10 * time.Second
)

type deleter interface {
	DeleteCells(ctx context.Context, rowKey, family string, qualifiers ...string) error
}

// Reaper deletes obsolete cells in the background. Work is fire-and-forget: Reap never
// blocks, and failures are logged and dropped.
type Reaper struct {
	deleter      deleter
	filePath     string
	collector    chan Task
	workers      int
	taskTimeout  time.Duration
	drainTimeout time.Duration

	// mutex guards closed and sends on collector
	mutex  sync.Mutex
	closed bool

	leftMutex sync.Mutex
	leftover  []Task

	group   *errgroup.Group
	procCtx context.Context
	cancel  context.CancelFunc
}

type Config struct {
	// Deleter removes the cells of a task.
	Deleter deleter
	// Workers is the number of concurrent deletes. Defaults to 4.
	Workers int
	// QueueSize bounds the number of pending tasks. Defaults to 1024.
	QueueSize int
	// TaskTimeout bounds a single delete. Defaults to 5s.
	TaskTimeout time.Duration
	// DrainTimeout bounds how long Stop waits for queued tasks. Defaults to 10s.
	DrainTimeout time.Duration
	// Path is an optional directory. When set, tasks still pending at Stop are written to a
	// GC log there and replayed by the next Start.
	Path string
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Deleter == nil {
		errGrp = append(errGrp, errors.New("deleter cannot be nil"))
	}
	if c.Workers < 0 {
		errGrp = append(errGrp, errors.New("workers cannot be negative"))
	}
	if c.QueueSize < 0 {
		errGrp = append(errGrp, errors.New("queue size cannot be negative"))
	}
	if c.TaskTimeout < 0 || c.DrainTimeout < 0 {
		errGrp = append(errGrp, errors.New("timeouts cannot be negative"))
	}
	return errors.Join(errGrp...)
}

// New creates a new Reaper.
func New(cfg *Config) (*Reaper, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	r := &Reaper{
		deleter:      cfg.Deleter,
		collector:    make(chan Task, orDefault(cfg.QueueSize, defaultQueueSize)),
		workers:      orDefault(cfg.Workers, defaultWorkers),
		taskTimeout:  orDefault(cfg.TaskTimeout, defaultTaskTimeout),
		drainTimeout: orDefault(cfg.DrainTimeout, defaultDrainTimeout),
		group:        &errgroup.Group{},
	}
	if cfg.Path != "" {
		r.filePath = filepath.Join(cfg.Path, reaperFile)
	}

	// create a cancel context so in-flight deletes stop when draining takes too long
	r.procCtx, r.cancel = context.WithCancel(context.Background())
	return r, nil
}

// Start replays the GC log, if any, and starts the workers.
func (r *Reaper) Start() error {
	if r.filePath != "" {
		tasks, err := r.load()
		if err != nil {
			return err
		}
		for _, t := range tasks {
			r.Reap(t)
		}
		if len(tasks) > 0 {
			log.Info().Int("tasks", len(tasks)).Msg("replayed reaper GC log")
		}
	}

	for range r.workers {
		r.group.Go(r.work)
	}
	return nil
}

// Stop refuses new tasks and waits for queued ones. Deletes still running after the drain
// timeout are cancelled; tasks that never ran are persisted to the GC log when configured.
func (r *Reaper) Stop() error {
	r.mutex.Lock()
	if r.closed {
		r.mutex.Unlock()
		return nil
	}
	r.closed = true
	close(r.collector)
	r.mutex.Unlock()

	done := make(chan struct{})
	go func() {
		_ = r.group.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(r.drainTimeout):
		log.Warn().Msg("reaper drain timed out: cancelling in-flight deletes")
		r.cancel()
		<-done
	}
	r.cancel()

	// tasks never picked up, e.g. when Start was not called
	for t := range r.collector {
		r.keep(t)
	}

	r.leftMutex.Lock()
	defer r.leftMutex.Unlock()
	if len(r.leftover) == 0 {
		return nil
	}
	if r.filePath == "" {
		log.Warn().Int("tasks", len(r.leftover)).Msg("reaper stopped with pending tasks: dropped")
		return nil
	}
	return r.write(r.leftover)
}

func (r *Reaper) Name() string {
	return "Reaper"
}

// Reap queues t without blocking. It reports false when the task was dropped because the
// reaper is stopped or its queue is full.
func (r *Reaper) Reap(t Task) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		log.Debug().Str("rowKey", t.RowKey).Msg("reaper stopped: task dropped")
		return false
	}

	select {
	case r.collector <- t:
		return true
	default:
		log.Warn().
			Str("rowKey", t.RowKey).
			Str("family", t.Family).
			Strs("qualifiers", t.Qualifiers).
			Msg("reaper queue full: task dropped")
		return false
	}
}

// Pending is the number of queued tasks.
func (r *Reaper) Pending() int {
	return len(r.collector)
}

func (r *Reaper) work() error {
	for t := range r.collector {
		if r.procCtx.Err() != nil {
			r.keep(t)
			continue
		}
		r.execute(t)
	}
	return nil
}

func (r *Reaper) execute(t Task) {
	ctx, cancel := context.WithTimeout(r.procCtx, r.taskTimeout)
	defer cancel()

	if err := r.deleter.DeleteCells(ctx, t.RowKey, t.Family, t.Qualifiers...); err != nil {
		log.Error().
			Err(err).
			Str("rowKey", t.RowKey).
			Str("family", t.Family).
			Strs("qualifiers", t.Qualifiers).
			Msg("failed to reap cells")
		return
	}
	log.Debug().
		Str("rowKey", t.RowKey).
		Str("family", t.Family).
		Strs("qualifiers", t.Qualifiers).
		Msg("reaped cells")
}

func (r *Reaper) keep(t Task) {
	r.leftMutex.Lock()
	defer r.leftMutex.Unlock()
	r.leftover = append(r.leftover, t)
}

func orDefault[T int | time.Duration](v, def T) T {
	if v == 0 {
		return def
	}
	return v
}
