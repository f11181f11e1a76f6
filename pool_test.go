// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package threadpool_test

import (
	"errors"
	"testing"

	threadpool "github.com/roh-1411/lock-free-threadpool"
)

func TestPoolInvalidConfiguration(t *testing.T) {
	if _, err := threadpool.NewPool(0, 16); !errors.Is(err, threadpool.ErrInvalidConfiguration) {
		t.Fatalf("want ErrInvalidConfiguration for zero workers, got %v", err)
	}
	if _, err := threadpool.NewPool(2, 1); !errors.Is(err, threadpool.ErrInvalidConfiguration) {
		t.Fatalf("want ErrInvalidConfiguration for sub-minimum capacity, got %v", err)
	}
	if _, err := threadpool.NewPool(2, 3); !errors.Is(err, threadpool.ErrInvalidConfiguration) {
		t.Fatalf("want ErrInvalidConfiguration for non-power-of-two capacity, got %v", err)
	}
}

func TestPoolTaskLiveness(t *testing.T) {
	pool, err := threadpool.NewPool(4, 64)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer pool.Shutdown()

	future, err := threadpool.Submit(pool, func() (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	value, err := future.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if value != 42 {
		t.Fatalf("want 42, got %d", value)
	}
}

func TestPoolTaskPanicResolvesWithFailure(t *testing.T) {
	pool, err := threadpool.NewPool(2, 16)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer pool.Shutdown()

	future, err := threadpool.Submit(pool, func() (int, error) {
		panic("boom")
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	_, err = future.Get()
	var failure *threadpool.TaskFailure
	if !errors.As(err, &failure) {
		t.Fatalf("want *TaskFailure, got %v", err)
	}
}

func TestPoolWaitAll(t *testing.T) {
	pool, err := threadpool.NewPool(4, 1024)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer pool.Shutdown()

	const n = 1000
	for i := 0; i < n; i++ {
		if _, err := threadpool.Submit(pool, func() (int, error) { return 0, nil }); err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
	}
	pool.WaitAll()

	if pool.QueueDepth() != 0 {
		t.Fatalf("want queue depth 0 after WaitAll, got %d", pool.QueueDepth())
	}
	if pool.Active() != 0 {
		t.Fatalf("want active 0 after WaitAll, got %d", pool.Active())
	}
}

func TestPoolSubmitAfterStop(t *testing.T) {
	pool, err := threadpool.NewPool(2, 16)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	pool.Shutdown()

	if _, err := threadpool.Submit(pool, func() (int, error) { return 0, nil }); !errors.Is(err, threadpool.ErrSubmitAfterStop) {
		t.Fatalf("want ErrSubmitAfterStop, got %v", err)
	}
}
