// clip_io.go - WAV clip load/save (16-bit PCM, interleaved stereo)

package autotune

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var errNotWAV = errors.New("autotune: not a RIFF/WAVE stream")

type waveFmt struct {
	audioFormat   uint16
	numChannels   uint16
	sampleRate    uint32
	bitsPerSample uint16
}

// LoadWAV decodes a 16-bit PCM WAVE stream into a stereo Audio clip. Mono
// input is duplicated to both channels.
func LoadWAV(r io.Reader) (*Audio, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, errNotWAV
	}

	var fmtChunk waveFmt
	var pcm []byte
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if body+size > len(data) {
			break
		}
		switch id {
		case "fmt ":
			fmtChunk.audioFormat = binary.LittleEndian.Uint16(data[body : body+2])
			fmtChunk.numChannels = binary.LittleEndian.Uint16(data[body+2 : body+4])
			fmtChunk.sampleRate = binary.LittleEndian.Uint32(data[body+4 : body+8])
			fmtChunk.bitsPerSample = binary.LittleEndian.Uint16(data[body+14 : body+16])
		case "data":
			pcm = data[body : body+size]
		}
		pos = body + size
		if size%2 == 1 {
			pos++
		}
	}

	if fmtChunk.bitsPerSample != 16 {
		return nil, fmt.Errorf("autotune: unsupported WAV bit depth %d", fmtChunk.bitsPerSample)
	}
	if fmtChunk.numChannels != 1 && fmtChunk.numChannels != 2 {
		return nil, fmt.Errorf("autotune: unsupported WAV channel count %d", fmtChunk.numChannels)
	}

	frameBytes := 2 * int(fmtChunk.numChannels)
	numFrames := len(pcm) / frameBytes
	left := make([]float32, numFrames)
	right := make([]float32, numFrames)

	for i := 0; i < numFrames; i++ {
		base := i * frameBytes
		l := int16(binary.LittleEndian.Uint16(pcm[base : base+2]))
		left[i] = float32(l) / 32768.0
		if fmtChunk.numChannels == 2 {
			r := int16(binary.LittleEndian.Uint16(pcm[base+2 : base+4]))
			right[i] = float32(r) / 32768.0
		} else {
			right[i] = left[i]
		}
	}

	return NewAudio(fmtChunk.sampleRate, left, right)
}

// SaveWAV encodes a stereo Audio clip as a 16-bit PCM WAVE stream.
func SaveWAV(w io.Writer, a *Audio) error {
	var buf bytes.Buffer

	numFrames := a.Len()
	dataSize := numFrames * 4 // 2 channels * 2 bytes
	riffSize := 36 + dataSize

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(riffSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(2)) // stereo
	binary.Write(&buf, binary.LittleEndian, a.SampleRate)
	byteRate := a.SampleRate * 4
	binary.Write(&buf, binary.LittleEndian, byteRate)
	binary.Write(&buf, binary.LittleEndian, uint16(4)) // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))

	for i := 0; i < numFrames; i++ {
		binary.Write(&buf, binary.LittleEndian, floatToPCM16(a.Left[i]))
		binary.Write(&buf, binary.LittleEndian, floatToPCM16(a.Right[i]))
	}

	_, err := w.Write(buf.Bytes())
	return err
}

func floatToPCM16(s float32) int16 {
	v := s * 32767.0
	if v > 32767 {
		v = 32767
	}
	if v < -32768 {
		v = -32768
	}
	return int16(v)
}
