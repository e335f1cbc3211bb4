package theoraclip

import "testing"

func TestRestartEngineResetsSourceGranuleAndQueue(t *testing.T) {
	src := newMemDataSource([]byte("some container bytes"))
	src.pos = 15

	sync := newSyncState()
	defer sync.clear()

	videoStream := newStreamState(1)
	defer videoStream.clear()
	videoCodecFake := newFakeVideoCodec()
	videoCodecFake.granuleSet = -999

	video := &videoEngine{codec: videoCodecFake, stream: videoStream, frameNumber: 77, droppedFrames: 3}

	audioStream := newStreamState(2)
	defer audioStream.clear()
	audioCodecFake := newFakeAudioCodec(2, 44100)
	audio := newAudioEngine(audioCodecFake, audioStream)
	audio.timestamp = 12.5
	audio.readPast = true
	audio.queue.push(samplePacket(2, 5, 1, 0))

	r := newRestartEngine(src, sync, video, audio)
	if err := r.execute(); err != nil {
		t.Fatalf("execute returned error: %v", err)
	}

	if src.pos != 0 {
		t.Fatalf("src.pos = %d after restart, want 0", src.pos)
	}
	if video.frameNumber != 0 {
		t.Fatalf("video.frameNumber = %d after restart, want 0", video.frameNumber)
	}
	if videoCodecFake.granuleSet != 1 {
		t.Fatalf("granuleSet = %d after restart on a non-3.2.0 stream, want 1", videoCodecFake.granuleSet)
	}
	if audio.timestamp != -1 {
		t.Fatalf("audio.timestamp = %v after restart, want -1", audio.timestamp)
	}
	if audio.readPast {
		t.Fatal("audio.readPast should be cleared after restart")
	}
	if audio.queue.frames != 0 {
		t.Fatalf("audio queue.frames = %d after restart, want 0", audio.queue.frames)
	}
	if !audioCodecFake.restarted {
		t.Fatal("audio codec Restart should have been called")
	}
}

func TestRestartEngineUsesZeroGranuleForVersion320(t *testing.T) {
	src := newMemDataSource(nil)
	sync := newSyncState()
	defer sync.clear()

	videoStream := newStreamState(1)
	defer videoStream.clear()
	codec := newFakeVideoCodec()
	codec.version320 = true
	codec.granuleSet = -999
	video := &videoEngine{codec: codec, stream: videoStream}

	r := newRestartEngine(src, sync, video, nil)
	if err := r.execute(); err != nil {
		t.Fatalf("execute returned error: %v", err)
	}
	if codec.granuleSet != 0 {
		t.Fatalf("granuleSet = %d for a Theora 3.2.0 stream, want 0", codec.granuleSet)
	}
}

func TestRestartEngineWithoutAudioSucceeds(t *testing.T) {
	src := newMemDataSource(nil)
	sync := newSyncState()
	defer sync.clear()

	videoStream := newStreamState(1)
	defer videoStream.clear()
	codec := newFakeVideoCodec()
	video := &videoEngine{codec: codec, stream: videoStream}

	r := newRestartEngine(src, sync, video, nil)
	if err := r.execute(); err != nil {
		t.Fatalf("execute with no audio stream returned error: %v", err)
	}
}

func TestRestartEngineFailsWhenSourceCannotSeek(t *testing.T) {
	sync := newSyncState()
	defer sync.clear()
	videoStream := newStreamState(1)
	defer videoStream.clear()
	video := &videoEngine{codec: newFakeVideoCodec(), stream: videoStream}

	r := newRestartEngine(&failingSeekSource{}, sync, video, nil)
	if err := r.execute(); err == nil {
		t.Fatal("expected execute to propagate a seek failure")
	}
}

type failingSeekSource struct{}

func (failingSeekSource) Read(buf []byte) (int, error) { return 0, nil }
func (failingSeekSource) SeekAbs(offset int64) error   { return errSeekBoom }
func (failingSeekSource) Size() (int64, bool)          { return 0, false }

var errSeekBoom = errPlain("boom")

type errPlain string

func (e errPlain) Error() string { return string(e) }
