// Package concurrency provides named mutexes for serializing work on
// string-keyed resources.
package concurrency

import (
	"sync"
)

// LockManager hands out one mutex per key. Locks are created on first use
// and never reclaimed; the key space is expected to stay small.
type LockManager struct {
	locks sync.Map
}

// NewLockManager creates an empty LockManager.
func NewLockManager() *LockManager {
	return &LockManager{}
}

// GetLock returns the mutex for key, creating it on first request. Callers
// racing on a fresh key all receive the same mutex.
func (lm *LockManager) GetLock(key string) *sync.Mutex {
	lock, _ := lm.locks.LoadOrStore(key, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
