package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/nimasrn/trader-ledger/pkg/logger"
)

type WorkerHandler = func(ctx context.Context, workerIndex int, job interface{})

var ErrNoHandler = errors.New("worker handler is not set")

type WorkerManager struct {
	bufferSize     int
	jobChannel     chan interface{}
	numberOfWorker int
	do             WorkerHandler
	waiter         *sync.WaitGroup
	closeOnce      sync.Once
}

// NewWorkerManager
// is a job manager based on go routines. Define the number of internal
// workers, publish jobs with Enqueue and call Close once every job is published.
// Start blocks until the queue is drained or the context is cancelled.
func NewWorkerManager(bufferSize, numberOfWorkers int) *WorkerManager {
	if numberOfWorkers <= 0 {
		numberOfWorkers = 1
	}
	return &WorkerManager{
		bufferSize:     bufferSize,
		numberOfWorker: numberOfWorkers,
		jobChannel:     make(chan interface{}, bufferSize),
		waiter:         &sync.WaitGroup{},
	}
}

func (w *WorkerManager) GetUnreadCount() int64 {
	return int64(len(w.jobChannel))
}

func (w *WorkerManager) SetWorker(worker WorkerHandler) {
	w.do = worker
}

// Enqueue
// Publishes a job onto the channel. It returns false when ctx is done first.
func (w *WorkerManager) Enqueue(ctx context.Context, val interface{}) bool {
	select {
	case w.jobChannel <- val:
		return true
	case <-ctx.Done():
		return false
	}
}

// Close marks the end of the job stream.
func (w *WorkerManager) Close() {
	w.closeOnce.Do(func() {
		close(w.jobChannel)
	})
}

// Start
// starts off the workers as many as defined by w.numberOfWorker
// and waits for all of them to return.
func (w *WorkerManager) Start(ctx context.Context) error {
	if w.do == nil {
		return ErrNoHandler
	}
	w.waiter.Add(w.numberOfWorker)
	for i := 0; i < w.numberOfWorker; i++ {
		go func(index int) {
			defer w.waiter.Done()
			for {
				select {
				case job, ok := <-w.jobChannel:
					if !ok {
						return
					}
					w.do(ctx, index, job)
				case <-ctx.Done():
					return
				}
			}
		}(i)
	}
	w.waiter.Wait()

	if err := ctx.Err(); err != nil {
		logger.Info("worker manager stopped", "reason", err)
		return err
	}
	return nil
}
