package sdr_test

import (
	"bytes"
	"testing"

	"github.com/Mictronics/pluto-gps-sim/internal/iobuf"
	"github.com/Mictronics/pluto-gps-sim/internal/sdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopWriteCloser struct{ *bytes.Buffer }

func (nopWriteCloser) Close() error { return nil }

func TestFileSinkWritesInterleavedSamples(t *testing.T) {
	var buf bytes.Buffer
	sink := sdr.NewFileSink(nopWriteCloser{&buf}, nil)

	f := &iobuf.Frame{Len: 2}
	f.I[0], f.Q[0] = 100, -200
	f.I[1], f.Q[1] = 300, -400

	require.NoError(t, sink.WriteFrame(f))
	assert.Equal(t, 8, buf.Len())
	require.NoError(t, sink.Close())
}

func TestNullSinkDiscards(t *testing.T) {
	var s sdr.NullSink
	assert.NoError(t, s.WriteFrame(&iobuf.Frame{}))
	assert.NoError(t, s.Close())
}
