package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/youpy/go-riff"
	"github.com/youpy/go-wav"
)

const (
	targetChannels = 1

	normalizedName = "audio.wav"
)

// Normalize stages the source recording into destDir as the canonical mono
// file consumed by the rest of the pipeline and reports its duration in
// seconds.
//
// WAV sources are decoded with go-wav: stereo input is downmixed to a single
// channel at the source's own sample rate and the duration is computed from
// the sample count. Sources the probe cannot decode are copied through
// verbatim with a duration of 0, which callers must tolerate as a
// placeholder rather than an error.
func Normalize(sourcePath, destDir string) (string, float64, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create audio dir: %w", err)
	}

	src, err := os.Open(sourcePath)
	if err != nil {
		return "", 0, fmt.Errorf("open source audio: %w", err)
	}
	defer src.Close()

	destPath := filepath.Join(destDir, normalizedName)

	if strings.EqualFold(filepath.Ext(sourcePath), ".wav") {
		if duration, err := rewriteWav(src, destPath); err == nil {
			return destPath, duration, nil
		}
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return "", 0, fmt.Errorf("rewind source audio: %w", err)
		}
	}

	if err := copyThrough(src, destPath); err != nil {
		return "", 0, err
	}
	return destPath, 0, nil
}

// rewriteWav decodes src, downmixes to mono and writes the result to
// destPath. Returns the duration derived from the frame count.
func rewriteWav(src riff.RIFFReader, destPath string) (float64, error) {
	reader := wav.NewReader(src)
	format, err := reader.Format()
	if err != nil {
		return 0, fmt.Errorf("probe wav header: %w", err)
	}
	if format.SampleRate == 0 {
		return 0, fmt.Errorf("probe wav header: zero sample rate")
	}

	var frames []wav.Sample
	for {
		batch, err := reader.ReadSamples(2048)
		for _, s := range batch {
			if format.NumChannels > 1 {
				s.Values[0] = (s.Values[0] + s.Values[1]) / 2
			}
			s.Values[1] = s.Values[0]
			frames = append(frames, s)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("decode wav samples: %w", err)
		}
	}

	out, err := os.Create(destPath)
	if err != nil {
		return 0, fmt.Errorf("create normalized audio: %w", err)
	}
	defer out.Close()

	writer := wav.NewWriter(out, uint32(len(frames)), targetChannels, format.SampleRate, format.BitsPerSample)
	if err := writer.WriteSamples(frames); err != nil {
		return 0, fmt.Errorf("write normalized audio: %w", err)
	}

	return float64(len(frames)) / float64(format.SampleRate), nil
}

func copyThrough(src io.Reader, destPath string) error {
	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create normalized audio: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("copy source audio: %w", err)
	}
	return nil
}
