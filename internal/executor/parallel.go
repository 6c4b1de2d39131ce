package executor

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"gomake/internal/ctxlog"
	"gomake/internal/task"
)

type nodeState int32

const (
	statePending nodeState = iota
	stateRunning
	stateDone
	stateFailed
	stateSkipped
)

// execNode is one schedulable task in a parallel run. depCount holds the
// number of dependencies that have not completed yet; a node joins the ready
// queue when it reaches zero.
type execNode struct {
	task       *task.Task
	dependents []*execNode
	depCount   atomic.Int32
	state      atomic.Int32
	err        error
	ran        bool
	skipOnce   sync.Once
}

func (n *execNode) setState(s nodeState) { n.state.Store(int32(s)) }
func (n *execNode) is(s nodeState) bool  { return n.state.Load() == int32(s) }

// runParallel schedules the resolved order as a DAG: a fixed pool of workers
// pulls ready nodes, and completing a node decrements its dependents'
// outstanding counters. On the first failure no new nodes are admitted, but
// in-flight tasks run to completion; the first failure in dependency-first
// order becomes the run's error.
func (e *Executor) runParallel(ctx context.Context, order []*task.Task, forced map[string]bool) (bool, error) {
	logger := ctxlog.FromContext(ctx)

	nodes := make(map[string]*execNode, len(order))
	ordered := make([]*execNode, 0, len(order))
	for _, t := range order {
		n := &execNode{task: t}
		nodes[t.Name] = n
		ordered = append(ordered, n)
	}
	for _, n := range ordered {
		deps, err := e.resolver.Dependencies(n.task)
		if err != nil {
			return false, err
		}
		for _, dep := range deps {
			depNode, ok := nodes[dep.Name]
			if !ok {
				continue
			}
			depNode.dependents = append(depNode.dependents, n)
			n.depCount.Add(1)
		}
	}

	readyChan := make(chan *execNode, len(ordered))
	var wg sync.WaitGroup
	wg.Add(len(ordered))
	var failed atomic.Bool

	rootCount := 0
	for _, n := range ordered {
		if n.depCount.Load() == 0 {
			readyChan <- n
			rootCount++
		}
	}
	logger.Debug("Parallel run starting.", "nodes", len(ordered), "roots", rootCount)

	workers := e.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	for i := 0; i < workers; i++ {
		go e.worker(ctx, i, readyChan, &wg, &failed, forced)
	}

	wg.Wait()
	close(readyChan)

	anyRan := false
	for _, n := range ordered {
		if n.ran {
			anyRan = true
			break
		}
	}
	for _, n := range ordered {
		if n.is(stateFailed) && n.err != nil {
			return anyRan, n.err
		}
	}
	return anyRan, nil
}

// worker is the processing loop for one pool slot.
func (e *Executor) worker(ctx context.Context, workerID int, readyChan chan *execNode, wg *sync.WaitGroup, failed *atomic.Bool, forced map[string]bool) {
	logger := ctxlog.FromContext(ctx)

	for n := range readyChan {
		workerLogger := logger.With("workerID", workerID, "task", n.task.Name)

		if failed.Load() || ctx.Err() != nil {
			n.skip(func() {
				workerLogger.Debug("Not admitting ready task after failure.")
				wg.Done()
				e.skipDependents(ctx, n, wg)
			})
			continue
		}

		workerLogger.Debug("Worker picked up task.")
		n.setState(stateRunning)
		ran, err := e.ExecuteTask(ctx, n.task, e.opts.Force || forced[n.task.Name])
		n.ran = ran

		if err != nil {
			workerLogger.Error("Task failed.", "error", err)
			n.err = err
			n.setState(stateFailed)
			failed.Store(true)
			e.skipDependents(ctx, n, wg)
			wg.Done()
			continue
		}

		n.setState(stateDone)
		for _, dependent := range n.dependents {
			if dependent.depCount.Add(-1) == 0 {
				workerLogger.Debug("Unlocking dependent task.", "dependent", dependent.task.Name)
				readyChan <- dependent
			}
		}
		wg.Done()
	}
}

// skipDependents marks every downstream node as skipped so the WaitGroup can
// drain without running them.
func (e *Executor) skipDependents(ctx context.Context, n *execNode, wg *sync.WaitGroup) {
	logger := ctxlog.FromContext(ctx)
	for _, dependent := range n.dependents {
		dep := dependent
		dep.skip(func() {
			logger.Debug("Skipping dependent of failed task.", "task", dep.task.Name, "failed", n.task.Name)
			wg.Done()
			e.skipDependents(ctx, dep, wg)
		})
	}
}

// skip transitions the node to skipped exactly once, running fn inside the
// guard so the WaitGroup is decremented a single time per node.
func (n *execNode) skip(fn func()) {
	n.skipOnce.Do(func() {
		n.setState(stateSkipped)
		fn()
	})
}
