package bg_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufield/yummy/internal/bg"
)

func TestAsync_DoConcurrency(t *testing.T) {
	const n = 100
	var wg sync.WaitGroup
	var counter atomic.Int32

	wg.Add(n)
	runner := bg.Async{}
	for i := 0; i < n; i++ {
		runner.Do(func() {
			counter.Add(1)
			wg.Done()
		})
	}
	wg.Wait()

	assert.Equal(t, int32(n), counter.Load())
}

func TestSync_DoRunsInOrder(t *testing.T) {
	var got []int
	runner := bg.Sync{}
	for i := 0; i < 5; i++ {
		runner.Do(func() { got = append(got, i) })
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestSync_DoPanicPropagates(t *testing.T) {
	assert.Panics(t, func() {
		bg.Sync{}.Do(func() { panic("listener crashed") })
	})
}

func TestGo_SyncIsClosedOnReturn(t *testing.T) {
	ran := false
	done := bg.Go(bg.Sync{}, func() { ran = true })

	select {
	case <-done:
	default:
		t.Fatal("done channel should be closed after a synchronous run")
	}
	assert.True(t, ran)
}

func TestGo_AsyncClosesWhenFnReturns(t *testing.T) {
	release := make(chan struct{})
	done := bg.Go(bg.Async{}, func() { <-release })

	select {
	case <-done:
		t.Fatal("done closed before fn returned")
	default:
	}

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("done not closed after fn returned")
	}
}

func TestDefault(t *testing.T) {
	require.IsType(t, bg.Async{}, bg.Default(nil))
	require.IsType(t, bg.Sync{}, bg.Default(bg.Sync{}))
}
