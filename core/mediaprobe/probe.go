package mediaprobe

import (
	"bytes"
	"context"
	"image"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	// Registered decoders for header-only dimension parsing.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/dmitrymomot/filevault/core/logger"
)

// Dimensions holds pixel dimensions of an image or video.
type Dimensions struct {
	Width  int
	Height int
}

// Info is the result of probing a byte payload.
type Info struct {
	// ContentType is the sniffed MIME type, never empty. Unrecognized payloads
	// sniff as application/octet-stream.
	ContentType string

	// Dimensions is set for images and videos whose headers could be parsed,
	// nil otherwise.
	Dimensions *Dimensions
}

var imageTypes = map[string]struct{}{
	"image/gif":  {},
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

var videoTypes = map[string]struct{}{
	"video/mp4":       {},
	"video/webm":      {},
	"video/quicktime": {},
}

// Sniff returns the magic-byte MIME type of data without touching dimensions.
// Callers that only need the type for a policy decision use this instead of a
// full probe.
func Sniff(data []byte) string {
	return mimetype.Detect(data).String()
}

// Prober sniffs content types and extracts media dimensions with bounded
// concurrency.
type Prober struct {
	sem         chan struct{}
	ffprobePath string
	log         *slog.Logger
}

// Option configures a Prober.
type Option func(*Prober)

// WithConcurrency caps the number of in-flight probes. Defaults to
// runtime.GOMAXPROCS(0). Values below one are ignored.
func WithConcurrency(n int) Option {
	return func(p *Prober) {
		if n > 0 {
			p.sem = make(chan struct{}, n)
		}
	}
}

// WithFFProbePath overrides PATH discovery of the ffprobe binary.
func WithFFProbePath(path string) Option {
	return func(p *Prober) {
		p.ffprobePath = path
	}
}

// WithLogger sets the logger for probe diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(p *Prober) {
		if log != nil {
			p.log = log.With(logger.Component("mediaprobe"))
		}
	}
}

// New creates a Prober. ffprobe is looked up on PATH once here; a missing
// binary is not an error until video bytes are actually probed.
func New(opts ...Option) *Prober {
	p := &Prober{
		log: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.sem == nil {
		p.sem = make(chan struct{}, runtime.GOMAXPROCS(0))
	}
	if p.ffprobePath == "" {
		if path, err := exec.LookPath("ffprobe"); err == nil {
			p.ffprobePath = path
		}
	}
	return p
}

// Probe sniffs the content type of data and, for known image and video types,
// extracts pixel dimensions. It blocks while all concurrency slots are busy.
//
// Image headers that fail to parse yield nil dimensions rather than an error;
// a video that ffprobe cannot read is an error, since the caller cannot tell a
// broken file from a broken probe.
func (p *Prober) Probe(ctx context.Context, data []byte) (Info, error) {
	select {
	case <-ctx.Done():
		return Info{}, ctx.Err()
	default:
	}

	select {
	case p.sem <- struct{}{}:
		defer func() { <-p.sem }()
	case <-ctx.Done():
		return Info{}, ctx.Err()
	}

	contentType := Sniff(data)
	info := Info{ContentType: contentType}

	base := contentType
	if i := strings.IndexByte(base, ';'); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}

	switch {
	case isImage(base):
		info.Dimensions = imageDimensions(data)
		if info.Dimensions == nil {
			p.log.WarnContext(ctx, "image header did not parse", logger.ContentType(base))
		}
	case isVideo(base):
		dims, err := p.videoDimensions(ctx, data)
		if err != nil {
			return Info{}, err
		}
		info.Dimensions = dims
	}

	return info, nil
}

func isImage(contentType string) bool {
	_, ok := imageTypes[contentType]
	return ok
}

func isVideo(contentType string) bool {
	_, ok := videoTypes[contentType]
	return ok
}

// imageDimensions parses the container header only; the pixel data is never
// decoded.
func imageDimensions(data []byte) *Dimensions {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return &Dimensions{Width: cfg.Width, Height: cfg.Height}
}
