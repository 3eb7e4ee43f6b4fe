package classifier

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

type job struct {
	ctx   context.Context
	text  string
	reply chan<- reply
}

type reply struct {
	scores map[string]float64
	err    error
}

// Pool runs inference for a Model on a fixed set of worker goroutines so
// that slow inference cannot pile up on request goroutines. It is itself a
// Model.
type Pool struct {
	model  Model
	jobs   chan job
	done   <-chan struct{}
	cancel context.CancelFunc
	g      *errgroup.Group
	once   sync.Once
}

// NewPool starts workers goroutines (GOMAXPROCS when workers <= 0).
func NewPool(m Model, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	p := &Pool{
		model:  m,
		jobs:   make(chan job),
		done:   gctx.Done(),
		cancel: cancel,
		g:      g,
	}
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			p.work(gctx)
			return nil
		})
	}
	return p
}

func (p *Pool) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-p.jobs:
			scores, err := p.model.Infer(j.ctx, j.text)
			j.reply <- reply{scores: scores, err: err}
		}
	}
}

func (p *Pool) Loaded() bool { return p.model.Loaded() }

// Infer waits for a free worker, giving up when ctx ends while queued. Once
// a worker has the job the call returns whatever the model answers; the
// model sees ctx and is expected to honour it.
func (p *Pool) Infer(ctx context.Context, text string) (map[string]float64, error) {
	if !p.model.Loaded() {
		return nil, ErrNotLoaded
	}
	ch := make(chan reply, 1)
	select {
	case p.jobs <- job{ctx: ctx, text: text, reply: ch}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.done:
		return nil, ErrPoolClosed
	}
	r := <-ch
	return r.scores, r.err
}

// Close stops the workers after in-flight jobs finish. It is safe to call
// more than once.
func (p *Pool) Close() error {
	p.once.Do(p.cancel)
	return p.g.Wait()
}
