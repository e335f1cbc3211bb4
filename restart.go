package theoraclip

// restartEngine resets a Clip's decode state back to the beginning of the
// stream for looped playback: the container byte position, the video
// decoder's granule baseline, both streams' packet reassembly, and the
// queued audio, without tearing down and reallocating the decode contexts
// the way Close/Open would.
//
// This mirrors the original player's _executeRestart: a restart is cheaper
// than a fresh Load because the three codec headers never need reparsing.
type restartEngine struct {
	src   DataSource
	sync  *syncState
	video *videoEngine
	audio *audioEngine
}

func newRestartEngine(src DataSource, sync *syncState, video *videoEngine, audio *audioEngine) *restartEngine {
	return &restartEngine{src: src, sync: sync, video: video, audio: audio}
}

// execute seeks the data source back to byte 0, resets the ogg sync
// scratch state, re-primes both stream's packet reassembly, resets the
// video decoder's granule baseline, and clears any queued audio. The frame
// queue is not touched here; Clip.Restart resets it.
func (r *restartEngine) execute() error {
	if err := r.src.SeekAbs(0); err != nil {
		return wrapErr(ErrKindSeekFailed, err, "restart: seeking to start")
	}
	r.sync.reset()

	r.video.stream.reset()
	// Theora 3.2.0 streams initialize their granule baseline to 0 rather
	// than 1, per the version check the video engine's codec exposes.
	granuleInit := int64(1)
	if r.video.codec.VersionIs320() {
		granuleInit = 0
	}
	if err := r.video.codec.SetGranule(granuleInit); err != nil {
		return wrapErr(ErrKindSeekFailed, err, "restart: resetting video granule baseline")
	}
	r.video.restart()

	if r.audio != nil {
		r.audio.stream.reset()
		r.audio.restart()
	}

	return nil
}
