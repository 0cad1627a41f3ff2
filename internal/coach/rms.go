package coach

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrMalformedFrame indicates an audio frame that cannot be decoded.
// Callers drop the frame and continue; it is never fatal to a capture.
var ErrMalformedFrame = errors.New("malformed audio frame")

// RMS returns the root-mean-square amplitude of the samples, a proxy
// for loudness. Returns 0 for an empty slice.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// DecodePCM16 converts a little-endian 16-bit PCM frame into normalized
// samples in [-1, 1). An empty or odd-length frame is malformed.
func DecodePCM16(frame []byte) ([]float64, error) {
	if len(frame) == 0 || len(frame)%2 != 0 {
		return nil, ErrMalformedFrame
	}
	samples := make([]float64, len(frame)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(frame[i*2:]))
		samples[i] = float64(v) / 32768
	}
	return samples, nil
}
