package theoraclip

// fakeVideoCodec is a videoCodec double driven entirely by Go state, used to
// exercise the decode-loop orchestration (drop-ahead policy, frame
// publication, restart/seek granule handling) without decoding through
// libtheora.
type fakeVideoCodec struct {
	granules    map[int64]int64 // packetNo -> granule to report
	nextGranule int64
	status      DecodeStatus
	err         error
	frameRateN  uint32
	frameRateD  uint32
	version320  bool
	granuleSet  int64
	keyShift    uint
	setGranuleErr error
}

func newFakeVideoCodec() *fakeVideoCodec {
	return &fakeVideoCodec{status: DecodeSuccess, frameRateN: 30, frameRateD: 1, keyShift: 6}
}

func (f *fakeVideoCodec) HeaderIn(pkt *Packet) (bool, error) { return true, nil }
func (f *fakeVideoCodec) Alloc() error                       { return nil }
func (f *fakeVideoCodec) Free()                              {}

func (f *fakeVideoCodec) PacketIn(pkt *Packet) (int64, DecodeStatus, error) {
	if f.err != nil {
		return 0, DecodeSkip, f.err
	}
	g := f.nextGranule
	f.nextGranule++
	return g, f.status, nil
}

func (f *fakeVideoCodec) GranuleFrame(granule int64) int64 { return granule }

// GranuleTime treats the granule directly as a frame count at frameRateN
// fps, i.e. time = granule / frameRateN.
func (f *fakeVideoCodec) GranuleTime(granule int64) float64 {
	return float64(granule) / float64(f.frameRateN)
}

func (f *fakeVideoCodec) KeyframeGranuleShift() uint { return f.keyShift }
func (f *fakeVideoCodec) SetGranule(granule int64) error {
	if f.setGranuleErr != nil {
		return f.setGranuleErr
	}
	f.granuleSet = granule
	return nil
}
func (f *fakeVideoCodec) YCbCr() (PlaneSet, error) { return PlaneSet{}, nil }
func (f *fakeVideoCodec) VersionIs320() bool       { return f.version320 }
func (f *fakeVideoCodec) Dimensions() (int, int, int, int, int, int) {
	return 320, 240, 0, 0, 320, 240
}
func (f *fakeVideoCodec) FrameRate() (uint32, uint32) { return f.frameRateN, f.frameRateD }
func (f *fakeVideoCodec) Close()                      {}

// fakeClock is a PresentationClock double with a directly settable time.
type fakeClock struct {
	now    float64
	paused bool
}

func (c *fakeClock) Now() float64    { return c.now }
func (c *fakeClock) Pause()          { c.paused = true }
func (c *fakeClock) Play()           { c.paused = false }
func (c *fakeClock) Paused() bool    { return c.paused }
func (c *fakeClock) SeekTo(t float64) { c.now = t }

// fakeAudioCodec is an audioCodec double for exercising the audio engine's
// pump/restart/realign logic without decoding through libvorbis.
type fakeAudioCodec struct {
	channels   int
	sampleRate int
	language   string
	queued     [][]float32 // one interleaved batch per entry, consumed FIFO by PCMOut
	restarted  bool
}

func newFakeAudioCodec(channels, sampleRate int) *fakeAudioCodec {
	return &fakeAudioCodec{channels: channels, sampleRate: sampleRate}
}

func (a *fakeAudioCodec) HeaderIn(pkt *Packet) (bool, error) { return true, nil }
func (a *fakeAudioCodec) InitSynthesis() error                { return nil }
func (a *fakeAudioCodec) ClearSynthesis()                     {}
func (a *fakeAudioCodec) Synthesis(pkt *Packet) error          { return nil }

func (a *fakeAudioCodec) PCMOut() ([][]float32, int, bool) {
	if len(a.queued) == 0 {
		return nil, 0, false
	}
	batch := a.queued[0]
	a.queued = a.queued[1:]
	samples := make([][]float32, a.channels)
	frames := len(batch) / a.channels
	for ch := 0; ch < a.channels; ch++ {
		samples[ch] = make([]float32, frames)
		for i := 0; i < frames; i++ {
			samples[ch][i] = batch[i*a.channels+ch]
		}
	}
	return samples, frames, true
}

func (a *fakeAudioCodec) PCMRead(n int)                    {}
func (a *fakeAudioCodec) GranuleTime(granule int64) float64 { return float64(granule) / float64(a.sampleRate) }
func (a *fakeAudioCodec) Restart()                          { a.restarted = true }
func (a *fakeAudioCodec) Channels() int                      { return a.channels }
func (a *fakeAudioCodec) SampleRate() int                    { return a.sampleRate }
func (a *fakeAudioCodec) Language() string                   { return a.language }
func (a *fakeAudioCodec) Close()                             {}
