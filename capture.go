package rgbfx

// This file contains the audio capture contract the audio effects
// consume.  Capture itself belongs to an external producer, typically a
// loopback or microphone PCM stream piped into the process.  Frames
// are mono float64 samples in [-1,1].
//
// A raw S16LE PCM stream at the configured rate can be produced with
// the usual system tools, for example
// "parec --raw --format=s16le --rate=44100 --channels=2" against the
// monitor source on PulseAudio systems, or "arecord -f S16_LE" for a
// plain capture device.

import (
	"encoding/binary"
	"io"
	"time"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"
)

// AudioSource produces one frame of amplitude samples per call.  A
// source may return an empty frame when no new data is available, the
// effects tolerate that by reusing their previous frame or skipping
// the tick.
type AudioSource interface {
	ReadFrame(samples int) (frame []float64, err errors.Error)
}

// PCMSource adapts a raw S16LE PCM byte stream into mono sample
// frames.  Interleaved channels are averaged down to one.
type PCMSource struct {
	reader   io.Reader
	channels int
	buf      []byte
}

func NewPCMSource(reader io.Reader, channels int) (source *PCMSource) {
	if channels < 1 {
		channels = 1
	}
	return &PCMSource{reader: reader, channels: channels}
}

func (source *PCMSource) ReadFrame(samples int) (frame []float64, err errors.Error) {
	need := samples * 2 * source.channels
	if cap(source.buf) < need {
		source.buf = make([]byte, need)
	}
	buf := source.buf[:need]

	n, errGo := io.ReadFull(source.reader, buf)
	if errGo != nil && errGo != io.ErrUnexpectedEOF {
		if errGo == io.EOF {
			return nil, nil
		}
		return nil, errors.Wrap(errGo, "audio read failed").With("stack", stack.Trace().TrimRuntime())
	}

	// A short read still yields the samples that did arrive.
	n -= n % (2 * source.channels)

	frame = make([]float64, 0, n/(2*source.channels))
	for off := 0; off < n; off += 2 * source.channels {
		sum := 0.0
		for ch := 0; ch < source.channels; ch++ {
			raw := int16(binary.LittleEndian.Uint16(buf[off+2*ch:]))
			sum += float64(raw) / 32768.0
		}
		frame = append(frame, sum/float64(source.channels))
	}
	return frame, nil
}

type frameResult struct {
	frame []float64
	err   errors.Error
}

// TimeoutSource bounds how long a ReadFrame may block on its wrapped
// source.  When the deadline passes the call returns an empty frame
// and the pending read is handed to the next call instead of being
// abandoned.
type TimeoutSource struct {
	source  AudioSource
	timeout time.Duration
	pending chan frameResult
	busy    bool
}

func NewTimeoutSource(source AudioSource, timeout time.Duration) (wrapped *TimeoutSource) {
	return &TimeoutSource{
		source:  source,
		timeout: timeout,
		pending: make(chan frameResult, 1),
	}
}

// ReadFrame is intended for a single consuming goroutine, the effect
// loop that owns the source.
func (wrapped *TimeoutSource) ReadFrame(samples int) (frame []float64, err errors.Error) {
	if !wrapped.busy {
		wrapped.busy = true
		go func() {
			frame, err := wrapped.source.ReadFrame(samples)
			wrapped.pending <- frameResult{frame: frame, err: err}
		}()
	}

	select {
	case result := <-wrapped.pending:
		wrapped.busy = false
		return result.frame, result.err
	case <-time.After(wrapped.timeout):
		return nil, nil
	}
}
