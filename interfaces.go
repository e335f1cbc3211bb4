package theoraclip

// Package theoraclip decodes Ogg-container streams carrying a Theora video
// elementary stream and, optionally, one or more Vorbis audio elementary
// streams, exposing a clock-synchronized sequence of decoded video frames
// together with an audio packet stream for external playback.
//
// The codec bitstream parsing itself is delegated to libogg/libtheora/
// libvorbis through cgo (ogg.go, theora.go, vorbis.go); everything above that
// — container bootstrap, the steady-state decode loop, seeking, and A/V
// synchronization — is implemented in Go against the small videoCodec/
// audioCodec interfaces below, which is also what lets those layers be
// driven by fake codec doubles in tests instead of real Theora/Vorbis
// bitstreams.

// DecodeStatus classifies the result of submitting a packet to the video
// decoder.
type DecodeStatus int

const (
	// DecodeSuccess means a new frame is ready.
	DecodeSuccess DecodeStatus = iota
	// DecodeDuplicateFrame means the decoder produced a repeat of the
	// previous frame (still publishable, per spec).
	DecodeDuplicateFrame
	// DecodeSkip covers every other decoder status; the packet is dropped.
	DecodeSkip
)

// Plane is one Y/Cb/Cr image plane. Data is a zero-copy view onto the
// decoder's internal frame buffer and is only valid until the next call to
// PacketIn or Free on the owning videoCodec.
type Plane struct {
	Data   []byte
	Stride int
	Width  int
	Height int
}

// PlaneSet groups the three planes of one decoded Theora frame.
type PlaneSet struct {
	Y, Cb, Cr Plane
}

// videoCodec abstracts the Theora bitstream decoder operations consumed by
// the header bootstrap (C2), decode engine (C4), and seek engine (C7).
type videoCodec interface {
	// HeaderIn submits a candidate header packet. ok reports whether the
	// packet was consumed as a Theora codec header (info/comment/setup, in
	// that order); when ok is false and err is nil, the packet was not a
	// Theora header at all (used for BOS-page classification during
	// bootstrap); a non-nil err means the packet was recognized as Theora
	// but malformed.
	HeaderIn(pkt *Packet) (ok bool, err error)
	// Alloc (re)allocates the decode context from the three accumulated
	// headers. Safe to call again after Free to reset decode state.
	Alloc() error
	// Free releases the decode context. Idempotent.
	Free()
	// PacketIn submits one video packet for decoding.
	PacketIn(pkt *Packet) (granule int64, status DecodeStatus, err error)
	// GranuleFrame converts a granule position to a frame number.
	GranuleFrame(granule int64) int64
	// GranuleTime converts a granule position to a presentation time.
	GranuleTime(granule int64) float64
	// KeyframeGranuleShift is the right-shift amount that isolates a
	// granule's key-frame number from its delta-frame offset.
	KeyframeGranuleShift() uint
	// SetGranule forces the decoder's internal granule position, used after
	// seek/restart before any packet has supplied one.
	SetGranule(granule int64) error
	// YCbCr returns the most recently decoded frame's planes.
	YCbCr() (PlaneSet, error)
	// VersionIs320 reports whether the stream's encoder is exactly Theora
	// 3.2.0, which needs a different post-seek granule initialization.
	VersionIs320() bool
	// Dimensions returns the coded frame size and the picture rectangle
	// within it.
	Dimensions() (width, height, picX, picY, picW, picH int)
	// FrameRate returns the stream's frame rate as a fraction.
	FrameRate() (num, den uint32)
	Close()
}

// audioCodec abstracts the Vorbis bitstream decoder operations consumed by
// the header bootstrap (C2), audio decode engine (C5), and seek engine (C7).
type audioCodec interface {
	// HeaderIn submits a candidate header packet, same contract as
	// videoCodec.HeaderIn but for Vorbis.
	HeaderIn(pkt *Packet) (ok bool, err error)
	// InitSynthesis creates the DSP state once all three headers are in.
	InitSynthesis() error
	// ClearSynthesis releases the DSP state.
	ClearSynthesis()
	// Synthesis submits one audio packet to the synthesizer. A packet the
	// synthesizer rejects is silently ignored by the caller, not an error
	// returned up the stack.
	Synthesis(pkt *Packet) error
	// PCMOut drains ready PCM from the synthesizer. ok is false when no
	// samples are currently available.
	PCMOut() (samples [][]float32, count int, ok bool)
	// PCMRead tells the synthesizer that n samples were consumed.
	PCMRead(n int)
	// GranuleTime converts a granule position to a presentation time.
	GranuleTime(granule int64) float64
	// Restart resets synthesis state without freeing it (used on loop
	// restart).
	Restart()
	Channels() int
	SampleRate() int
	// Language returns the stream's LANGUAGE= comment tag, or "".
	Language() string
	Close()
}

// DataSource is the byte-stream data source the Clip reads from: a file, an
// in-memory buffer, or anything network-backed that supports random access.
type DataSource interface {
	// Read reads into buf, returning the number of bytes read. Returning
	// (0, io.EOF) signals exhaustion.
	Read(buf []byte) (n int, err error)
	// SeekAbs seeks to an absolute byte offset from the start of the
	// stream.
	SeekAbs(offset int64) error
	// Size returns the total byte size of the stream and whether it is
	// known. When known is false, the duration probe and byte-level seek
	// are disabled.
	Size() (size int64, known bool)
}

// AudioSink is the audio output sink created by an AudioSinkFactory. It
// drains the Clip's audio queue from its own goroutine; Deliver is the only
// method the decode thread calls, always with the audio mutex held.
type AudioSink interface {
	// Deliver hands ownership of newly playable packets to the sink.
	Deliver(packets []*AudioPacket)
	Close() error
}

// AudioSinkFactory creates an AudioSink for a Clip once its audio stream
// selection and format are known. May be nil, in which case the Clip decodes
// video only and ignores any audio streams in the container.
type AudioSinkFactory interface {
	Create(clip *Clip, channels, sampleRate int) (AudioSink, error)
}

// PresentationClock is the wall-clock driving playback. The decoder never
// owns wall time; it only reads and occasionally repositions this clock.
type PresentationClock interface {
	Now() float64
	Pause()
	Play()
	Paused() bool
	SeekTo(t float64)
}

// Frame is one decoded video frame slot, owned by the FrameQueue and reused
// across playback iterations.
type Frame struct {
	Payload       any
	TimeToDisplay float64
	Number        int64
	Iteration     int
	InUse         bool
}

// FrameQueue is the bounded admission/publication primitive for decoded
// frames. A default ring-buffer implementation is provided in
// framequeue.go; hosts may substitute their own.
type FrameQueue interface {
	// RequestEmpty returns a writable slot, or nil if the queue is full.
	RequestEmpty() *Frame
	// ReleaseEmpty marks a slot obtained via RequestEmpty as unused again
	// without publishing it.
	ReleaseEmpty(f *Frame)
	// Publish commits a filled slot and advances the write cursor.
	Publish(f *Frame)
	// ResetAll clears the in-use flag on every slot (used by seek/restart).
	ResetAll()
	// Capacity is the number of slots (precachedFramesCount).
	Capacity() int
}

// PixelTransform turns raw decoded planes into a caller-defined output
// payload (e.g. an RGBA image). Called exactly once per published frame, on
// the decoder thread.
type PixelTransform interface {
	Transform(planes PlaneSet) (payload any, err error)
}
