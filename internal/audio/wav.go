package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	wavHeaderSize = 44
	minFmtChunk   = 16
	formatPCM     = 1
	formatExt     = 0xFFFE
)

// WAVHeader holds the fields of a PCM WAV file the pipeline checks.
type WAVHeader struct {
	AudioFormat   uint16
	Channels      int
	SampleRate    int
	BitsPerSample int
	BlockAlign    int
	DataSize      int64
}

// Format converts the header into a Format.
func (h WAVHeader) Format() Format {
	encoding := ""
	switch h.BitsPerSample {
	case 16:
		encoding = EncodingPCM16
	case 24:
		encoding = EncodingPCM24
	case 32:
		encoding = EncodingPCM32
	}
	return Format{SampleRate: h.SampleRate, Channels: h.Channels, BitDepth: h.BitsPerSample, Encoding: encoding}
}

// Duration returns the playback length implied by the data chunk.
func (h WAVHeader) Duration() float64 {
	frame := h.BlockAlign
	if frame <= 0 || h.SampleRate <= 0 {
		return 0
	}
	return float64(h.DataSize/int64(frame)) / float64(h.SampleRate)
}

// ReadWAVHeaderFile opens path and reads its RIFF header.
func ReadWAVHeaderFile(path string) (WAVHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return WAVHeader{}, err
	}
	defer f.Close()
	return ReadWAVHeader(f)
}

// ReadWAVHeader walks RIFF chunks until the data chunk and returns the
// format and data length. Unknown chunks are skipped.
func ReadWAVHeader(r io.Reader) (WAVHeader, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return WAVHeader{}, fmt.Errorf("read RIFF header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return WAVHeader{}, errors.New("not a RIFF/WAVE file")
	}

	var (
		header  WAVHeader
		haveFmt bool
	)
	for {
		var chunk [8]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return WAVHeader{}, errors.New("data chunk not found")
			}
			return WAVHeader{}, fmt.Errorf("read chunk header: %w", err)
		}
		id := string(chunk[0:4])
		size := int64(binary.LittleEndian.Uint32(chunk[4:8]))

		switch id {
		case "fmt ":
			if size < minFmtChunk {
				return WAVHeader{}, fmt.Errorf("fmt chunk too small (%d bytes)", size)
			}
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return WAVHeader{}, fmt.Errorf("read fmt chunk: %w", err)
			}
			header.AudioFormat = binary.LittleEndian.Uint16(body[0:2])
			header.Channels = int(binary.LittleEndian.Uint16(body[2:4]))
			header.SampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			header.BlockAlign = int(binary.LittleEndian.Uint16(body[12:14]))
			header.BitsPerSample = int(binary.LittleEndian.Uint16(body[14:16]))
			if header.AudioFormat != formatPCM && header.AudioFormat != formatExt {
				return WAVHeader{}, fmt.Errorf("unsupported WAV audio format %d", header.AudioFormat)
			}
			haveFmt = true
			if size%2 == 1 {
				if err := skip(r, 1); err != nil {
					return WAVHeader{}, err
				}
			}
		case "data":
			if !haveFmt {
				return WAVHeader{}, errors.New("data chunk precedes fmt chunk")
			}
			header.DataSize = size
			return header, nil
		default:
			if err := skip(r, size+size%2); err != nil {
				return WAVHeader{}, fmt.Errorf("skip chunk %q: %w", id, err)
			}
		}
	}
}

func skip(r io.Reader, n int64) error {
	if n == 0 {
		return nil
	}
	if _, err := io.CopyN(io.Discard, r, n); err != nil {
		return fmt.Errorf("skip %d bytes: %w", n, err)
	}
	return nil
}

// EncodeWAV wraps raw little-endian PCM samples in a canonical 44-byte WAV
// header.
func EncodeWAV(pcm []byte, format Format) ([]byte, error) {
	format = format.withDefaults()
	if !format.IsPCM() {
		return nil, fmt.Errorf("encode wav: unsupported encoding %q", format.Encoding)
	}
	frame := format.FrameSize()
	if len(pcm)%frame != 0 {
		return nil, fmt.Errorf("encode wav: %d bytes is not a whole number of %d-byte frames", len(pcm), frame)
	}

	wav := make([]byte, wavHeaderSize+len(pcm))
	copy(wav[0:4], "RIFF")
	binary.LittleEndian.PutUint32(wav[4:8], uint32(36+len(pcm)))
	copy(wav[8:12], "WAVE")
	copy(wav[12:16], "fmt ")
	binary.LittleEndian.PutUint32(wav[16:20], minFmtChunk)
	binary.LittleEndian.PutUint16(wav[20:22], formatPCM)
	binary.LittleEndian.PutUint16(wav[22:24], uint16(format.Channels))
	binary.LittleEndian.PutUint32(wav[24:28], uint32(format.SampleRate))
	binary.LittleEndian.PutUint32(wav[28:32], uint32(format.SampleRate*frame))
	binary.LittleEndian.PutUint16(wav[32:34], uint16(frame))
	binary.LittleEndian.PutUint16(wav[34:36], uint16(format.BitDepth))
	copy(wav[36:40], "data")
	binary.LittleEndian.PutUint32(wav[40:44], uint32(len(pcm)))
	copy(wav[44:], pcm)
	return wav, nil
}

// Silence returns a WAV of the given length containing only zero samples.
func Silence(seconds float64, format Format) ([]byte, error) {
	format = format.withDefaults()
	frames := int(seconds * float64(format.SampleRate))
	if frames < 0 {
		frames = 0
	}
	return EncodeWAV(make([]byte, frames*format.FrameSize()), format)
}
