package sim

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// workerPool runs submitted tasks on a fixed set of goroutines.
type workerPool struct {
	workers   int
	taskQueue chan func()
	wg        sync.WaitGroup
	once      sync.Once
	log       *logrus.Entry
}

func newWorkerPool(workers int, log *logrus.Entry) *workerPool {
	if workers <= 0 {
		workers = 1
	}
	wp := &workerPool{
		workers:   workers,
		taskQueue: make(chan func(), workers*2),
		log:       log,
	}
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
	return wp
}

func (wp *workerPool) worker() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		func() {
			defer func() {
				if r := recover(); r != nil {
					wp.log.WithField("panic", r).Error("worker task panicked")
				}
			}()
			task()
		}()
	}
}

func (wp *workerPool) submit(task func()) {
	wp.taskQueue <- task
}

// wait closes the queue and blocks until every submitted task has run.
func (wp *workerPool) wait() {
	wp.once.Do(func() { close(wp.taskQueue) })
	wp.wg.Wait()
}
