package capture

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var createPreviewFile = func(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
}

// WritePreview stores the artifact as a playable WAV file under dir and returns its path.
func WritePreview(dir string, artifact Artifact, stamp int64) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create preview dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("recording-%d.wav", stamp))
	file, err := createPreviewFile(path)
	if err != nil {
		return "", fmt.Errorf("open preview file %q: %w", path, err)
	}

	if err := writePCM16WAV(file, artifact.data, SampleRate, Channels); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("write preview %q: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close preview %q: %w", path, err)
	}
	return path, nil
}

// writePCM16WAV writes raw little-endian PCM bytes behind a minimal WAV header.
func writePCM16WAV(w io.Writer, pcm []byte, sampleRate int, channels int) error {
	if channels <= 0 {
		channels = 1
	}
	const bitsPerSample = 16
	byteRate := sampleRate * channels * (bitsPerSample / 8)
	blockAlign := channels * (bitsPerSample / 8)

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+len(pcm)))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(pcm)))

	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err := w.Write(pcm)
	return err
}
