// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ezrec/ls8/cpu"
)

const (
	CYCLE_INTERVAL = time.Millisecond // 1 kHz machine clock.
	TIMER_INTERVAL = time.Second      // 1 Hz timer interrupt.
)

// Scheduler drives an emulator in real time. It owns two periodic
// triggers, the cycle clock and the timer interrupt, and stops both
// together. All access to machine state is serialized by one lock.
type Scheduler struct {
	Emulator      *Emulator
	CycleInterval time.Duration // Time between machine cycles.
	TimerInterval time.Duration // Time between timer interrupts.

	mutex  sync.Mutex
	cancel context.CancelFunc
}

// NewScheduler creates a scheduler with the default clock rates.
func NewScheduler(emu *Emulator) *Scheduler {
	return &Scheduler{
		Emulator:      emu,
		CycleInterval: CYCLE_INTERVAL,
		TimerInterval: TIMER_INTERVAL,
	}
}

// Locked calls fn while holding the execution lock.
func (sch *Scheduler) Locked(fn func(emu *Emulator)) {
	sch.mutex.Lock()
	defer sch.mutex.Unlock()

	fn(sch.Emulator)
}

// Stop cancels a running scheduler. Both the cycle clock and the timer
// are stopped before Run returns.
func (sch *Scheduler) Stop() {
	sch.mutex.Lock()
	defer sch.mutex.Unlock()

	if sch.cancel != nil {
		sch.cancel()
	}
}

// Run drives the emulator until it halts, faults, is stopped, or ctx is
// done. A fault is returned as the error.
func (sch *Scheduler) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sch.mutex.Lock()
	if sch.cancel != nil {
		sch.mutex.Unlock()
		err = ErrRunning
		return
	}
	sch.cancel = cancel
	sch.mutex.Unlock()

	defer func() {
		sch.mutex.Lock()
		sch.cancel = nil
		sch.mutex.Unlock()
	}()

	cycle := sch.CycleInterval
	if cycle <= 0 {
		cycle = CYCLE_INTERVAL
	}
	timer := sch.TimerInterval
	if timer <= 0 {
		timer = TIMER_INTERVAL
	}

	group, ctx := errgroup.WithContext(ctx)

	// Machine clock. Halting or faulting stops every other trigger.
	group.Go(func() (err error) {
		defer cancel()

		ticker := time.NewTicker(cycle)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				var done bool
				sch.Locked(func(emu *Emulator) {
					done, err = emu.Tick()
				})
				if err != nil || done {
					return
				}
			}
		}
	})

	// Timer interrupt.
	group.Go(func() (err error) {
		ticker := time.NewTicker(timer)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sch.Locked(func(emu *Emulator) {
					if emu.Verbose {
						log.Printf("scheduler: timer")
					}
					emu.Raise(cpu.INT_TIMER)
				})
			}
		}
	})

	// Keyboard interrupt.
	keys := sch.Emulator.Keyboard.Keys(ctx)
	group.Go(func() (err error) {
		for {
			select {
			case <-ctx.Done():
				return
			case key, ok := <-keys:
				if !ok {
					return
				}
				sch.Locked(func(emu *Emulator) {
					emu.Key(key)
				})
			}
		}
	})

	err = group.Wait()

	return
}
