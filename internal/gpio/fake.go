package gpio

import (
	"errors"

	"github.com/sweeney/stopwatch/internal/logic"
)

// FakeBoard is a test double that returns scripted button samples and
// records written outputs.
type FakeBoard struct {
	// Samples contains scripted button samples to return.
	// Each call to Read() consumes the next sample.
	Samples []logic.Buttons

	// index tracks current position in Samples
	index int

	// Written records every Outputs passed to Write.
	Written []logic.Outputs

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error

	// WriteError, if set, will be returned by Write()
	WriteError error

	post PostFunc
}

// NewFakeBoard creates a FakeBoard with the given samples. Edges simulated
// with Fire are delivered to post, which may be nil.
func NewFakeBoard(samples []logic.Buttons, post PostFunc) *FakeBoard {
	return &FakeBoard{Samples: samples, post: post}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeBoard) Read() (logic.Buttons, error) {
	if f.ReadError != nil {
		return logic.Buttons{}, f.ReadError
	}

	if len(f.Samples) == 0 {
		return logic.Buttons{}, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Write records the outputs.
func (f *FakeBoard) Write(out logic.Outputs) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Written = append(f.Written, out)
	return nil
}

// LastWritten returns the most recent outputs, or the zero value.
func (f *FakeBoard) LastWritten() logic.Outputs {
	if len(f.Written) == 0 {
		return logic.Outputs{}
	}
	return f.Written[len(f.Written)-1]
}

// Fire simulates an edge on a control line.
func (f *FakeBoard) Fire(kind logic.InputKind) {
	if f.post != nil {
		f.post(kind)
	}
}

// Close marks the board as closed.
func (f *FakeBoard) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the board to the beginning of samples.
func (f *FakeBoard) Reset() {
	f.index = 0
	f.Closed = false
	f.Written = nil
}
