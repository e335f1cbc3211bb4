package theoraclip

import "log/slog"

// OutputMode selects how decoded video planes are turned into a host-usable
// payload.
type OutputMode int

const (
	// OutputModeYCbCr hands the raw decoded planes straight through; the
	// PixelTransform, if any, is skipped.
	OutputModeYCbCr OutputMode = iota
	// OutputModeTransform runs every decoded frame through the configured
	// PixelTransform.
	OutputModeTransform
)

// Options configures a Clip. The zero value is usable: it decodes video
// only, with no language preference and a logger that falls back to
// slog.Default().
type Options struct {
	// OutputMode selects plane passthrough vs PixelTransform.
	OutputMode OutputMode
	// PrecachedFramesCount sizes the default FrameQueue. Zero defaults to 4.
	PrecachedFramesCount int
	// UsePotStride rounds reported plane strides up to the next power of
	// two via potCeil, for hosts that upload planes into power-of-two
	// textures.
	UsePotStride bool
	// AudioLanguagePreference selects among multiple candidate Vorbis
	// streams during header bootstrap. Empty selects the first stream in
	// container order.
	AudioLanguagePreference string
	// AudioSinkFactory creates the AudioSink once audio format is known.
	// Nil disables audio entirely, even if the container carries it.
	AudioSinkFactory AudioSinkFactory
	// PixelTransform is required when OutputMode is OutputModeTransform.
	PixelTransform PixelTransform
	// FrameQueue overrides the default bounded ring queue.
	FrameQueue FrameQueue
	// Clock overrides the default wall-clock PresentationClock.
	Clock PresentationClock
	// Log receives audio-sink and duration-probe diagnostics; bootstrap and
	// seek failures are returned as errors and are not logged. Nil defaults
	// to slog.Default().
	Log *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Log != nil {
		return o.Log
	}
	return slog.Default()
}

func (o Options) precachedFramesCount() int {
	if o.PrecachedFramesCount > 0 {
		return o.PrecachedFramesCount
	}
	return 4
}
