// Package speech provides speech-to-text transcription and WAV decoding
// helpers for captured answer audio.
package speech

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrInvalidWAV indicates the payload is not a decodable PCM WAV file.
var ErrInvalidWAV = errors.New("invalid wav data")

type wavFormat struct {
	audioFormat   uint16
	channels      uint16
	sampleRate    uint32
	bitsPerSample uint16
	data          []byte
}

// Duration returns the playback length in seconds of a 16-bit PCM WAV
// payload.
func Duration(wav []byte) (float64, error) {
	f, err := parseWAV(wav)
	if err != nil {
		return 0, err
	}
	bytesPerSecond := int(f.sampleRate) * int(f.channels) * int(f.bitsPerSample) / 8
	if bytesPerSecond == 0 {
		return 0, fmt.Errorf("%w: zero byte rate", ErrInvalidWAV)
	}
	return float64(len(f.data)) / float64(bytesPerSecond), nil
}

// Samples decodes a 16-bit PCM WAV payload into normalized samples in
// [-1, 1). Channels are not deinterleaved; level analysis does not care
// about channel order.
func Samples(wav []byte) ([]float64, error) {
	f, err := parseWAV(wav)
	if err != nil {
		return nil, err
	}
	if len(f.data)%2 != 0 {
		f.data = f.data[:len(f.data)-1]
	}
	samples := make([]float64, 0, len(f.data)/2)
	for i := 0; i+1 < len(f.data); i += 2 {
		v := int16(binary.LittleEndian.Uint16(f.data[i:]))
		samples = append(samples, float64(v)/32768.0)
	}
	return samples, nil
}

func parseWAV(wav []byte) (*wavFormat, error) {
	if len(wav) < 12 || string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return nil, fmt.Errorf("%w: missing RIFF/WAVE header", ErrInvalidWAV)
	}

	var f wavFormat
	haveFmt := false
	offset := 12
	for offset+8 <= len(wav) {
		chunkID := string(wav[offset : offset+4])
		chunkLen := int(binary.LittleEndian.Uint32(wav[offset+4 : offset+8]))
		body := wav[offset+8:]
		if chunkLen > len(body) {
			chunkLen = len(body)
		}

		switch chunkID {
		case "fmt ":
			if chunkLen < 16 {
				return nil, fmt.Errorf("%w: short fmt chunk", ErrInvalidWAV)
			}
			f.audioFormat = binary.LittleEndian.Uint16(body[0:2])
			f.channels = binary.LittleEndian.Uint16(body[2:4])
			f.sampleRate = binary.LittleEndian.Uint32(body[4:8])
			f.bitsPerSample = binary.LittleEndian.Uint16(body[14:16])
			haveFmt = true
		case "data":
			f.data = body[:chunkLen]
		}

		// Chunks are word-aligned.
		offset += 8 + chunkLen + chunkLen%2
	}

	if !haveFmt {
		return nil, fmt.Errorf("%w: missing fmt chunk", ErrInvalidWAV)
	}
	if f.data == nil {
		return nil, fmt.Errorf("%w: missing data chunk", ErrInvalidWAV)
	}
	if f.audioFormat != 1 || f.bitsPerSample != 16 {
		return nil, fmt.Errorf("%w: only 16-bit PCM is supported (format=%d bits=%d)", ErrInvalidWAV, f.audioFormat, f.bitsPerSample)
	}
	return &f, nil
}
