package worker

import (
	"context"
	"sync"

	"file-parser-service/internal/logger"

	"github.com/rs/zerolog"
)

// Pool runs parse jobs on a bounded set of goroutines, detached from the
// request that submitted them. Jobs contain their own failures; the pool
// never sees an error from one.
type Pool struct {
	workerCount int
	jobChan     chan func(context.Context)
	wg          sync.WaitGroup
	overflow    sync.WaitGroup
	ctx         context.Context
	log         zerolog.Logger
}

func NewPool(workerCount, queueDepth int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	if queueDepth < workerCount {
		queueDepth = workerCount * 2
	}
	return &Pool{
		workerCount: workerCount,
		jobChan:     make(chan func(context.Context), queueDepth),
		log:         logger.Get(),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.ctx = ctx
	p.log.Info().Int("worker_count", p.workerCount).Msg("Starting worker pool")

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

func (p *Pool) Stop() {
	p.log.Info().Msg("Stopping worker pool")
	close(p.jobChan)
	p.wg.Wait()
	p.overflow.Wait()
	p.log.Info().Msg("Worker pool stopped")
}

// Submit hands a job to the pool without blocking the caller. A full queue
// falls back to a dedicated goroutine: dropping a parse job would strand its
// file in a non-terminal status forever.
func (p *Pool) Submit(job func(context.Context)) {
	select {
	case p.jobChan <- job:
	default:
		p.log.Warn().Msg("Worker pool queue full, running job in dedicated goroutine")
		p.overflow.Add(1)
		go func() {
			defer p.overflow.Done()
			job(p.ctx)
		}()
	}
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	log := p.log.With().Int("worker_id", id).Logger()
	log.Debug().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("Worker stopping due to context cancellation")
			return
		case job, ok := <-p.jobChan:
			if !ok {
				log.Debug().Msg("Worker stopping due to closed job channel")
				return
			}
			job(ctx)
		}
	}
}
