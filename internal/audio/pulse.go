package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"

	"github.com/rbright/recite/internal/capture"
)

const fragmentSizeBytes = 640 // 20ms @ 16kHz mono s16

// PulseDevice opens capture streams on the configured Pulse input source.
type PulseDevice struct {
	Input    string
	Fallback string
	Logger   *slog.Logger
}

// Open selects a source and starts a 16kHz mono s16 record stream feeding sink.
func (d PulseDevice) Open(ctx context.Context, sink capture.Sink) (capture.Stream, error) {
	selection, err := SelectDevice(ctx, d.Input, d.Fallback)
	if err != nil {
		return nil, err
	}
	if selection.Warning != "" && d.Logger != nil {
		d.Logger.Warn(selection.Warning)
	}
	return startStream(selection.Device, sink)
}

// Stream is one live Pulse record stream.
type Stream struct {
	device Device

	client *pulse.Client
	record *pulse.RecordStream
	sink   capture.Sink

	mu       sync.Mutex
	stopped  bool
	inflight sync.WaitGroup
	bytes    atomic.Int64
}

// startStream connects to Pulse and starts recording from device.
func startStream(device Device, sink capture.Sink) (*Stream, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}

	source, err := client.SourceByID(device.ID)
	if err != nil {
		client.Close()
		return nil, classify(fmt.Errorf("resolve source %q: %w", device.ID, err))
	}

	s := &Stream{device: device, client: client, sink: sink}
	writer := pulse.NewWriter(writerFunc(s.onPCM), pulseproto.FormatInt16LE)
	record, err := client.NewRecord(
		writer,
		pulse.RecordSource(source),
		pulse.RecordMono,
		pulse.RecordSampleRate(capture.SampleRate),
		pulse.RecordBufferFragmentSize(fragmentSizeBytes),
		pulse.RecordMediaName("recite reading"),
	)
	if err != nil {
		client.Close()
		return nil, classify(fmt.Errorf("create pulse record stream: %w", err))
	}

	s.record = record
	record.Start()
	return s, nil
}

// Device returns the source this stream records from.
func (s *Stream) Device() Device {
	return s.device
}

// BytesCaptured reports total bytes accepted from Pulse.
func (s *Stream) BytesCaptured() int64 {
	return s.bytes.Load()
}

// Close stops the record stream and releases the Pulse connection exactly once.
func (s *Stream) Close() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.mu.Unlock()

	if s.record != nil {
		s.record.Stop()
		s.record.Close()
	}
	if s.client != nil {
		s.client.Close()
	}
	s.inflight.Wait()
	return nil
}

// onPCM forwards one Pulse buffer to the sink until the stream stops.
func (s *Stream) onPCM(buffer []byte) (int, error) {
	if len(buffer) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return 0, io.EOF
	}
	// Guard Add under the same mutex as s.stopped to avoid Add/Wait races.
	s.inflight.Add(1)
	s.mu.Unlock()
	defer s.inflight.Done()

	s.bytes.Add(int64(len(buffer)))
	if s.sink != nil {
		s.sink(buffer)
	}
	return len(buffer), nil
}

// writerFunc adapts a function to io.Writer for pulse.NewWriter.
type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(b []byte) (int, error) {
	return f(b)
}

// classify tags Pulse failures with the capture error taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, capture.ErrPermissionDenied) || errors.Is(err, capture.ErrDeviceUnavailable) {
		return err
	}
	lower := strings.ToLower(err.Error())
	for _, marker := range []string{"access denied", "permission denied", "not authorized"} {
		if strings.Contains(lower, marker) {
			return fmt.Errorf("%w: %v", capture.ErrPermissionDenied, err)
		}
	}
	return fmt.Errorf("%w: %v", capture.ErrDeviceUnavailable, err)
}
