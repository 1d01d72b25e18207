package concurrency

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLockSameKeySameMutex(t *testing.T) {
	lm := NewLockManager()
	assert.Same(t, lm.GetLock("quest:bone_collector"), lm.GetLock("quest:bone_collector"))
	assert.NotSame(t, lm.GetLock("quest:bone_collector"), lm.GetLock("quest:scavenger"))
}

func TestGetLockConcurrentFirstUse(t *testing.T) {
	lm := NewLockManager()

	const goroutines = 16
	results := make([]*sync.Mutex, goroutines)

	var wg sync.WaitGroup
	for n := 0; n < goroutines; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results[n] = lm.GetLock("fresh")
		}(n)
	}
	wg.Wait()

	for n := 1; n < goroutines; n++ {
		assert.Same(t, results[0], results[n])
	}
}
