package rcu

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/atomic"
)

func TestWaitGracePeriodReturnsImmediatelyWhenIdle(t *testing.T) {
	s := New()
	done := make(chan struct{})
	go func() {
		s.WaitGracePeriod()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitGracePeriod blocked with no active readers")
	}
}

func TestWaitGracePeriodWaitsForActiveReader(t *testing.T) {
	s := New()
	tok := s.ReadLock()

	gpDone := make(chan struct{})
	go func() {
		s.WaitGracePeriod()
		close(gpDone)
	}()

	select {
	case <-gpDone:
		t.Fatal("WaitGracePeriod returned before the active reader unlocked")
	case <-time.After(30 * time.Millisecond):
	}

	s.ReadUnlock(tok)

	select {
	case <-gpDone:
	case <-time.After(2 * time.Second):
		t.Fatal("WaitGracePeriod never observed the reader draining")
	}
}

func TestAssignPointerAndDereference(t *testing.T) {
	var p atomic.Pointer[int]
	v := 7
	AssignPointer(&p, &v)
	assert.Equal(t, 7, *Dereference(&p))
}

func TestConcurrentReadersDoNotRace(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok := s.ReadLock()
			s.ReadUnlock(tok)
		}()
	}
	wg.Wait()
	s.WaitGracePeriod()
}
