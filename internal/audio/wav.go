package audio

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

const (
	HeaderSize    = 44
	Channels      = 1
	BitsPerSample = 16

	bytesPerSample  = BitsPerSample / 8
	formatPCM       = 1
	fmtChunkSize    = 16
	riffHeaderBytes = 36
)

var (
	ErrOddLength     = errors.New("pcm16 data must have an even number of bytes")
	ErrInvalidRate   = errors.New("sample rate must be positive")
	ErrMissingRate   = errors.New("mime type has no rate parameter")
	sampleRateInMime = regexp.MustCompile(`rate=(\d+)`)
)

// EncodeWAV wraps mono 16-bit samples in a RIFF/WAVE container.
func EncodeWAV(samples []int16, sampleRate int) ([]byte, error) {
	if sampleRate <= 0 {
		return nil, ErrInvalidRate
	}

	blockAlign := Channels * bytesPerSample
	byteRate := sampleRate * blockAlign
	dataLength := len(samples) * bytesPerSample

	buf := make([]byte, HeaderSize+dataLength)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(riffHeaderBytes+dataLength))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], fmtChunkSize)
	binary.LittleEndian.PutUint16(buf[20:22], formatPCM)
	binary.LittleEndian.PutUint16(buf[22:24], Channels)
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], BitsPerSample)

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataLength))

	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[HeaderSize+i*bytesPerSample:], uint16(s))
	}

	return buf, nil
}

// DecodePCM16 reads little-endian signed 16-bit samples.
func DecodePCM16(data []byte) ([]int16, error) {
	if len(data)%bytesPerSample != 0 {
		return nil, ErrOddLength
	}
	samples := make([]int16, len(data)/bytesPerSample)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*bytesPerSample:]))
	}
	return samples, nil
}

// DecodeBase64PCM decodes base64 audio data into 16-bit samples.
func DecodeBase64PCM(encoded string) ([]int16, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio data: %w", err)
	}
	return DecodePCM16(raw)
}

// ParseSampleRate extracts the rate from a mime type like "audio/L16;rate=24000".
func ParseSampleRate(mimeType string) (int, error) {
	match := sampleRateInMime.FindStringSubmatch(mimeType)
	if match == nil {
		return 0, ErrMissingRate
	}
	rate, err := strconv.Atoi(match[1])
	if err != nil || rate <= 0 {
		return 0, ErrInvalidRate
	}
	return rate, nil
}
