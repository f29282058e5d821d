// Package audio handles loading and validating WAV voice clips before they
// are forwarded to the speaker encoder.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-audio/wav"
)

var (
	// ErrEmptyClip is returned when the input contains no audio data.
	ErrEmptyClip = errors.New("empty audio clip")

	// ErrInvalidWAV is returned when the input is not a valid PCM WAV file.
	ErrInvalidWAV = errors.New("invalid WAV file")
)

// Clip is a decoded voice sample. Data holds the original WAV bytes so the
// clip can be forwarded to the encoder service without re-encoding.
type Clip struct {
	// Path is the source file path, if the clip was loaded from disk.
	Path string

	// Data is the raw WAV file content.
	Data []byte

	// SampleRate is the sample rate in Hz.
	SampleRate int

	// Channels is the number of audio channels.
	Channels int

	// BitDepth is the bit depth of each sample.
	BitDepth int

	// Duration is the play length of the clip.
	Duration time.Duration
}

// Load reads and decodes a WAV file from disk.
func Load(path string) (*Clip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading audio file %s: %w", path, err)
	}

	clip, err := Decode(data)
	if err != nil {
		return nil, err
	}
	clip.Path = path

	return clip, nil
}

// Decode parses WAV bytes into a Clip, validating the RIFF header and
// PCM format along the way.
func Decode(data []byte) (*Clip, error) {
	if len(data) == 0 {
		return nil, ErrEmptyClip
	}

	decoder := wav.NewDecoder(bytes.NewReader(data))
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return nil, ErrInvalidWAV
	}

	duration, err := decoder.Duration()
	if err != nil {
		return nil, fmt.Errorf("%w: reading duration: %v", ErrInvalidWAV, err)
	}

	return &Clip{
		Data:       data,
		SampleRate: int(decoder.SampleRate),
		Channels:   int(decoder.NumChans),
		BitDepth:   int(decoder.BitDepth),
		Duration:   duration,
	}, nil
}
