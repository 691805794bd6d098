package side

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReentrantMutexAllowsSameGoroutineRecursion(t *testing.T) {
	m := newReentrantMutex()
	m.Lock()
	done := make(chan struct{})
	go func() {
		m.Lock() // must block: different goroutine
		m.Unlock()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("a different goroutine acquired the lock while it was held")
	case <-time.After(20 * time.Millisecond):
	}

	m.Lock() // same goroutine: must not deadlock
	m.Unlock()
	m.Unlock()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("other goroutine never acquired the lock after release")
	}
}

func TestReentrantMutexExcludesOtherGoroutines(t *testing.T) {
	m := newReentrantMutex()
	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Lock()
			defer m.Unlock()
			counter++
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, counter)
}
