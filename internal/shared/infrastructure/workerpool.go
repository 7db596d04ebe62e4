package infrastructure

import (
	"context"
	"errors"
	"sync"
)

// ErrPoolStopped est retourné par Submit après Stop, Wait ou une première erreur
var ErrPoolStopped = errors.New("worker pool is stopped")

// Task représente une tâche à exécuter; ctx est annulé dès qu'une tâche échoue
type Task func(ctx context.Context) error

// WorkerPool exécute des tâches sur un nombre borné de goroutines.
// La première erreur annule le contexte partagé: les tâches encore en file
// ne sont pas lancées et Wait retourne cette erreur.
type WorkerPool struct {
	workerCount int
	tasks       chan Task
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc

	errOnce  sync.Once
	err      error
	stopOnce sync.Once
}

// NewWorkerPool crée un nouveau pool de workers (minimum 1)
func NewWorkerPool(ctx context.Context, workerCount int) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	return &WorkerPool{
		workerCount: workerCount,
		tasks:       make(chan Task, workerCount*2),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start démarre les workers
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for task := range wp.tasks {
		if wp.ctx.Err() != nil {
			continue
		}
		if err := task(wp.ctx); err != nil {
			wp.fail(err)
		}
	}
}

func (wp *WorkerPool) fail(err error) {
	wp.errOnce.Do(func() {
		wp.err = err
		wp.cancel()
	})
}

// Submit soumet une tâche au pool; bloque si la file est pleine
func (wp *WorkerPool) Submit(task Task) error {
	select {
	case <-wp.ctx.Done():
		return ErrPoolStopped
	case wp.tasks <- task:
		return nil
	}
}

// Wait ferme la file, attend la fin des workers et retourne la première erreur.
// Si le contexte parent a été annulé sans erreur de tâche, son erreur est retournée.
func (wp *WorkerPool) Wait() error {
	wp.stopOnce.Do(func() { close(wp.tasks) })
	wp.wg.Wait()
	defer wp.cancel()

	if wp.err != nil {
		return wp.err
	}
	return wp.ctx.Err()
}

// Stop annule les tâches en attente et attend les workers
func (wp *WorkerPool) Stop() {
	wp.cancel()
	wp.stopOnce.Do(func() { close(wp.tasks) })
	wp.wg.Wait()
}
