package offload

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
)

// ErrClosed is returned by dispatchers that have been shut down.
var ErrClosed = errors.New("offload: dispatcher closed")

type job struct {
	payload []byte
	result  chan []byte
}

// Pool handles requests on a fixed set of worker goroutines.
type Pool struct {
	jobs   chan job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPool(workers, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		jobs:   make(chan job, queueSize),
		ctx:    ctx,
		cancel: cancel,
	}
	for range workers {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case j := <-p.jobs:
			j.result <- Serve(j.payload)
		}
	}
}

func (p *Pool) Dispatch(ctx context.Context, req Request) (Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return Response{}, errors.Wrap(err, "encoding request")
	}
	// buffered so a worker never blocks on a caller that gave up
	j := job{payload: payload, result: make(chan []byte, 1)}

	select {
	case p.jobs <- j:
	case <-ctx.Done():
		return Response{}, ctx.Err()
	case <-p.ctx.Done():
		return Response{}, ErrClosed
	}

	select {
	case buf := <-j.result:
		return decodeResponse(req.ID, buf)
	case <-ctx.Done():
		return Response{}, ctx.Err()
	case <-p.ctx.Done():
		return Response{}, ErrClosed
	}
}

// Close stops the workers. Queued jobs are abandoned.
func (p *Pool) Close() {
	p.cancel()
	p.wg.Wait()
}
