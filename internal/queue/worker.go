package queue

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Worker pulls jobs off the queue and dispatches them to registered
// handlers. A gocron scheduler drives recurring jobs that enqueue work on a
// fixed cadence.
type Worker struct {
	queue      *RedisQueue
	handlers   map[JobType]JobHandler
	numWorkers int
	wg         sync.WaitGroup
	quit       chan struct{}
	scheduler  *gocron.Scheduler
}

// NewWorker creates a new worker pool
func NewWorker(queue *RedisQueue, numWorkers int) *Worker {
	return &Worker{
		queue:      queue,
		handlers:   make(map[JobType]JobHandler),
		numWorkers: numWorkers,
		quit:       make(chan struct{}),
		scheduler:  gocron.NewScheduler(time.UTC),
	}
}

// RegisterHandler registers a handler for a job type
func (w *Worker) RegisterHandler(jobType JobType, handler JobHandler) {
	w.handlers[jobType] = handler
}

// ScheduleDaily runs fn every day at the given HH:MM (UTC)
func (w *Worker) ScheduleDaily(at string, fn func()) error {
	_, err := w.scheduler.Every(1).Day().At(at).Do(fn)
	return err
}

// Start starts the worker goroutines and the recurring-job scheduler
func (w *Worker) Start() {
	log.Printf("Starting %d queue workers", w.numWorkers)

	for i := 0; i < w.numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}
	w.scheduler.StartAsync()
}

// Stop stops the workers and the scheduler
func (w *Worker) Stop() {
	log.Println("Stopping queue workers")
	close(w.quit)
	w.wg.Wait()
	w.scheduler.Stop()
}

// process pulls and handles jobs until the worker is stopped
func (w *Worker) process(workerID int) {
	defer w.wg.Done()
	ctx := context.Background()

	for {
		select {
		case <-w.quit:
			log.Printf("Worker %d stopped", workerID)
			return
		default:
			job, err := w.queue.Dequeue(ctx, 1*time.Second)
			if err != nil {
				log.Printf("Error dequeueing job: %v", err)
				time.Sleep(1 * time.Second)
				continue
			}
			if job == nil {
				continue
			}
			w.handle(ctx, job)
		}
	}
}

func (w *Worker) handle(ctx context.Context, job *Job) {
	handler, ok := w.handlers[job.Type]
	if !ok {
		log.Printf("No handler registered for job type %s, dropping job %s", job.Type, job.ID)
		return
	}

	if err := handler(ctx, job); err != nil {
		log.Printf("Job %s (%s) failed: %v", job.ID, job.Type, err)
		if job.Retries < job.MaxRetries {
			if requeueErr := w.queue.Requeue(ctx, job); requeueErr != nil {
				log.Printf("Failed to requeue job %s: %v", job.ID, requeueErr)
			}
		} else {
			log.Printf("Job %s (%s) exhausted retries, dropping", job.ID, job.Type)
		}
	}
}
