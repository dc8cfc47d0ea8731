// Package mediaprobe detects content types and media dimensions for ingested
// bytes.
//
// Detection is magic-byte based: client-supplied types, file names and
// extensions are never consulted. For gif/jpeg/png/webp images the dimensions
// are parsed from the container headers; for mp4/webm/quicktime videos they are
// read from the stream metadata reported by an ffprobe subprocess. Every other
// content type probes successfully with no dimensions — an unknown type is a
// valid outcome, not an error. Bucket content policy is the content store's
// concern, not this package's.
//
// Probing can be CPU- and subprocess-bound, so a Prober bounds its concurrency
// with a semaphore: when all slots are busy, Probe blocks until one frees up or
// the context is cancelled. This keeps a burst of large uploads from starving
// the goroutines serving I/O-bound requests.
//
//	prober := mediaprobe.New(mediaprobe.WithConcurrency(4))
//	info, err := prober.Probe(ctx, data)
//	if err != nil {
//		return err
//	}
//	// info.ContentType is always set; info.Dimensions may be nil.
//
// When several video streams expose dimensions, the last one wins. ffprobe is
// discovered on PATH at construction time; probing video bytes without it
// fails with ErrFFProbeUnavailable.
package mediaprobe
