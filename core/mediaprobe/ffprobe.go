package mediaprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/dmitrymomot/filevault/core/logger"
)

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeStream struct {
	Width  *int `json:"width"`
	Height *int `json:"height"`
}

// videoDimensions writes data to a temp file and asks ffprobe for the stream
// metadata. ffprobe wants a seekable input, so piping stdin is not an option
// for mp4 files with a trailing moov atom.
func (p *Prober) videoDimensions(ctx context.Context, data []byte) (*Dimensions, error) {
	if p.ffprobePath == "" {
		return nil, ErrFFProbeUnavailable
	}

	tmp, err := os.CreateTemp("", "mediaprobe-*")
	if err != nil {
		return nil, fmt.Errorf("%w: create temp file: %v", ErrProbeFailed, err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("%w: write temp file: %v", ErrProbeFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("%w: close temp file: %v", ErrProbeFailed, err)
	}

	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_streams",
		tmp.Name(),
	)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			p.log.WarnContext(ctx, "ffprobe rejected input",
				logger.Error(err),
				slog.String("stderr", string(exitErr.Stderr)),
			)
		}
		return nil, fmt.Errorf("%w: ffprobe: %v", ErrProbeFailed, err)
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode ffprobe output: %v", ErrProbeFailed, err)
	}

	return dimensionsFromStreams(parsed.Streams), nil
}

// dimensionsFromStreams picks the dimensions of the last stream reporting both
// a width and a height. Containers can carry several video streams (cover art,
// thumbnails); the primary stream conventionally comes last among those with
// real dimensions.
func dimensionsFromStreams(streams []ffprobeStream) *Dimensions {
	var dims *Dimensions
	for _, s := range streams {
		if s.Width != nil && s.Height != nil {
			dims = &Dimensions{Width: *s.Width, Height: *s.Height}
		}
	}
	return dims
}
