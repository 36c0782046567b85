package tts

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// WAV container constants for 16-bit PCM mono output.
const (
	wavHeaderSize    = 44
	wavFmtChunkSize  = 16
	wavFormatPCM     = 1
	wavChannelsMono  = 1
	wavBitsPerSample = 16
	wavBytesPerFrame = 2
)

// encodeWAV wraps 16-bit little-endian samples in a RIFF/WAVE container.
func encodeWAV(samples []int16, sampleRate int) ([]byte, error) {
	dataSize := len(samples) * wavBytesPerFrame

	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+dataSize))

	buf.WriteString("RIFF")
	writeLE(buf, uint32(wavHeaderSize-8+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	writeLE(buf, uint32(wavFmtChunkSize))
	writeLE(buf, uint16(wavFormatPCM))
	writeLE(buf, uint16(wavChannelsMono))
	writeLE(buf, uint32(sampleRate))
	writeLE(buf, uint32(sampleRate*wavChannelsMono*wavBytesPerFrame))
	writeLE(buf, uint16(wavChannelsMono*wavBytesPerFrame))
	writeLE(buf, uint16(wavBitsPerSample))

	buf.WriteString("data")
	writeLE(buf, uint32(dataSize))

	err := binary.Write(buf, binary.LittleEndian, samples)
	if err != nil {
		return nil, fmt.Errorf("failed to encode samples: %w", err)
	}

	return buf.Bytes(), nil
}

// writeLE writes a fixed-size value in little-endian order. Writes to a
// bytes.Buffer cannot fail.
func writeLE(buf *bytes.Buffer, value any) {
	_ = binary.Write(buf, binary.LittleEndian, value)
}
