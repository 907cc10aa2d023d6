package iobuf_test

import (
	"testing"
	"time"

	"github.com/Mictronics/pluto-gps-sim/internal/iobuf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducerConsumerHandoff(t *testing.T) {
	db := iobuf.New()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := 0; i < 3; i++ {
			f := db.BeginWrite()
			require.NotNil(t, f)
			f.I[0] = int32(i + 1)
			f.Len = 1
			db.EndWrite()
		}
	}()

	for i := 0; i < 3; i++ {
		f := db.TakeFull()
		require.NotNil(t, f)
		assert.Equal(t, int32(i+1), f.I[0])
		db.Release()
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("producer did not finish")
	}
}

func TestStopUnblocksWaiters(t *testing.T) {
	db := iobuf.New()

	resultCh := make(chan *iobuf.Frame, 1)
	go func() {
		resultCh <- db.TakeFull()
	}()

	time.Sleep(10 * time.Millisecond)
	db.Stop()

	select {
	case f := <-resultCh:
		assert.Nil(t, f)
	case <-time.After(time.Second):
		t.Fatal("TakeFull did not unblock after Stop")
	}
}
