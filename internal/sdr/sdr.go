// Package sdr writes quantized I/Q frames out to the chosen hardware or
// file sink. The serial sink uses the teacher's sole third-party transport
// dependency (FengXuebin-gnssgo's stream.go wraps tarm/goserial for its
// serial stream type; here it is an output path, alongside the file and
// null sinks, rather than a receiver input stream).
package sdr

import (
	"encoding/binary"
	"io"

	"github.com/Mictronics/pluto-gps-sim/internal/iobuf"
	"github.com/sirupsen/logrus"
	serial "github.com/tarm/goserial"
)

// Sink accepts finished I/Q frames for output and can be closed.
type Sink interface {
	WriteFrame(f *iobuf.Frame) error
	Close() error
}

// NullSink discards every frame; useful for dry runs and benchmarking the
// synthesis pipeline without an attached radio.
type NullSink struct{}

func (NullSink) WriteFrame(*iobuf.Frame) error { return nil }
func (NullSink) Close() error                  { return nil }

// FileSink writes interleaved little-endian int16 I/Q samples to a file,
// the simulator's default output when no hardware is attached.
type FileSink struct {
	w   io.WriteCloser
	log *logrus.Entry
}

// NewFileSink wraps an already-open file (or any io.WriteCloser).
func NewFileSink(w io.WriteCloser, log *logrus.Entry) *FileSink {
	return &FileSink{w: w, log: log}
}

func (s *FileSink) WriteFrame(f *iobuf.Frame) error {
	buf := make([]byte, f.Len*4)
	for i := 0; i < f.Len; i++ {
		binary.LittleEndian.PutUint16(buf[i*4:], uint16(int16(f.I[i])))
		binary.LittleEndian.PutUint16(buf[i*4+2:], uint16(int16(f.Q[i])))
	}
	n, err := s.w.Write(buf)
	if err != nil {
		return err
	}
	if s.log != nil {
		s.log.WithField("bytes", n).Debug("wrote I/Q frame")
	}
	return nil
}

func (s *FileSink) Close() error { return s.w.Close() }

// SerialSink streams I/Q samples out over a serial link to an attached
// SDR front end, using the teacher's own transport dependency
// (github.com/tarm/goserial).
type SerialSink struct {
	port io.ReadWriteCloser
	log  *logrus.Entry
}

// OpenSerial opens a serial port at the given device path and baud rate.
func OpenSerial(device string, baud int, log *logrus.Entry) (*SerialSink, error) {
	cfg := &serial.Config{Name: device, Baud: baud}
	port, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, err
	}
	return &SerialSink{port: port, log: log}, nil
}

func (s *SerialSink) WriteFrame(f *iobuf.Frame) error {
	buf := make([]byte, f.Len*4)
	for i := 0; i < f.Len; i++ {
		binary.LittleEndian.PutUint16(buf[i*4:], uint16(int16(f.I[i])))
		binary.LittleEndian.PutUint16(buf[i*4+2:], uint16(int16(f.Q[i])))
	}
	_, err := s.port.Write(buf)
	if err != nil && s.log != nil {
		s.log.WithError(err).Warn("serial write failed")
	}
	return err
}

func (s *SerialSink) Close() error { return s.port.Close() }
