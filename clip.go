package theoraclip

import (
	"log/slog"
	"sync"
)

// Clip is a bootstrapped Ogg/Theora(+Vorbis) stream ready for frame-by-frame
// decoding. It owns the container sync state, the selected video and
// (optional) audio streams, and the frame queue and clock playback reads
// from.
type Clip struct {
	src  DataSource
	sync *syncState
	opts Options
	log  *slog.Logger

	video *videoEngine
	audio *audioEngine

	queue FrameQueue
	clock PresentationClock
	sink  AudioSink

	restarter *restartEngine

	width, height         int
	picX, picY            int
	picWidth, picHeight   int
	frameRateNum          uint32
	frameRateDen          uint32
	framesCount           int64
	duration              float64
	durationKnown         bool

	audioChannelsCount int
	audioSampleRate    int
	minAudioLead       float64

	mu                     sync.Mutex
	iteration              int
	endOfFile              bool
	restarted              bool
	autoRestart            bool
	droppedFramesCount     int64
	lastDecodedFrameNumber int64
	seekFrame              int64 // -1 means no pending seek

	audioMu sync.Mutex
}

// Open bootstraps a Clip from src: classifies its elementary streams,
// absorbs their codec headers, selects an audio stream per
// opts.AudioLanguagePreference, allocates the decode contexts, and probes
// the stream's duration. The returned Clip is ready for DecodeNextFrame.
func Open(src DataSource, opts Options) (*Clip, error) {
	oggSync := newSyncState()

	boot, err := bootstrap(src, oggSync, opts.AudioLanguagePreference)
	if err != nil {
		oggSync.clear()
		return nil, err
	}

	queue := opts.FrameQueue
	if queue == nil {
		queue = newRingFrameQueue(opts.precachedFramesCount())
	}
	clock := opts.Clock
	if clock == nil {
		clock = newWallClock()
	}

	video := newVideoEngine(boot.video, boot.videoStream, queue, opts)

	w, h, picX, picY, picW, picH := boot.video.Dimensions()
	num, den := boot.video.FrameRate()

	c := &Clip{
		src:          src,
		sync:         oggSync,
		opts:         opts,
		log:          opts.logger(),
		video:        video,
		queue:        queue,
		clock:        clock,
		width:        w,
		height:       h,
		picX:         picX,
		picY:         picY,
		picWidth:     picW,
		picHeight:    picH,
		frameRateNum: num,
		frameRateDen: den,
		autoRestart:  true,
		seekFrame:    -1,
	}

	if num > 0 {
		c.minAudioLead = float64(queue.Capacity())*float64(den)/float64(num) + 1.0
	} else {
		c.minAudioLead = 1.0
	}

	if boot.audio != nil && opts.AudioSinkFactory == nil {
		// No sink to play it: release the selected stream, decode video only.
		boot.audio.Close()
		boot.audioStream.clear()
		boot.audio, boot.audioStream = nil, nil
	}
	if boot.audio != nil {
		c.audio = newAudioEngine(boot.audio, boot.audioStream)
		c.audioChannelsCount = boot.audio.Channels()
		c.audioSampleRate = boot.audio.SampleRate()
		if opts.AudioSinkFactory != nil {
			sink, err := opts.AudioSinkFactory.Create(c, c.audioChannelsCount, c.audioSampleRate)
			if err != nil {
				c.log.Warn("audio sink creation failed, continuing video-only", "error", err)
			} else {
				c.sink = sink
			}
		}
	}

	c.restarter = newRestartEngine(src, oggSync, video, c.audio)

	if framesCount, ok := probeDuration(src, boot.video, boot.videoStream.serial); ok {
		c.framesCount = framesCount
		if c.frameRateNum > 0 {
			c.duration = float64(framesCount) * float64(c.frameRateDen) / float64(c.frameRateNum)
			c.durationKnown = true
		}
	} else {
		c.log.Warn("could not determine clip duration", "error", ErrUnknownDuration)
	}

	// Re-sync to the start of the container for steady-state decoding; the
	// duration probe above seeks around the tail of the source.
	if err := src.SeekAbs(0); err != nil {
		c.Close()
		return nil, wrapErr(ErrKindSeekFailed, err, "rewinding after duration probe")
	}
	oggSync.reset()
	video.stream.reset()
	if c.audio != nil {
		c.audio.stream.reset()
	}

	return c, nil
}

func (c *Clip) pullMore() bool {
	buf := c.sync.buffer(bootstrapBufferSize)
	n, err := c.src.Read(buf)
	if n <= 0 {
		return false
	}
	c.sync.wrote(n)
	if err != nil {
		return false
	}

	for {
		page, status := c.sync.pageOut()
		if status != pageOK {
			break
		}
		serial := page.serial()
		if serial == c.video.stream.serial {
			c.video.stream.pageIn(page)
		} else if c.audio != nil && serial == c.audio.stream.serial {
			c.audio.stream.pageIn(page)
		}
	}
	return true
}

// DecodeNextFrame decodes and publishes the next video frame, pumping the
// audio engine alongside it when present. It returns false at end of
// stream; if AutoRestart is set, end of stream triggers an automatic
// restart and DecodeNextFrame returns true for the first frame of the new
// iteration instead.
func (c *Clip) DecodeNextFrame() (bool, error) {
	c.mu.Lock()
	pendingSeek := c.seekFrame
	c.seekFrame = -1
	restarted := c.restarted
	c.restarted = false
	c.mu.Unlock()

	if pendingSeek >= 0 {
		if err := c.executeSeek(pendingSeek); err != nil {
			return false, err
		}
		return true, nil
	}

	ok, err := c.video.decodeNextFrame(c.clock, restarted, c.pullMore)
	if err != nil {
		return false, err
	}

	if c.audio != nil {
		c.audioMu.Lock()
		c.audio.pump(c.clock.Now(), c.minAudioLead, c.pullMore)
		packets := c.audio.queue.drain()
		if len(packets) > 0 && c.sink != nil {
			c.sink.Deliver(packets)
		}
		c.audioMu.Unlock()
	}

	if !ok {
		c.mu.Lock()
		c.endOfFile = true
		c.droppedFramesCount = c.video.droppedFrames
		c.mu.Unlock()

		if c.autoRestart {
			if err := c.Restart(); err != nil {
				return false, err
			}
			return c.DecodeNextFrame()
		}
		return false, nil
	}

	c.mu.Lock()
	c.lastDecodedFrameNumber = c.video.frameNumber
	c.mu.Unlock()
	return true, nil
}

// Restart resets playback to the beginning of the stream without
// reallocating the decode contexts.
func (c *Clip) Restart() error {
	if err := c.restarter.execute(); err != nil {
		return err
	}
	c.clock.SeekTo(0)
	c.mu.Lock()
	c.iteration++
	c.endOfFile = false
	c.restarted = true
	c.mu.Unlock()
	c.queue.ResetAll()
	return nil
}

// fps returns the stream's frame rate as a float, or 0 if unknown.
func (c *Clip) fps() float64 {
	if c.frameRateDen == 0 {
		return 0
	}
	return float64(c.frameRateNum) / float64(c.frameRateDen)
}

// Seek latches a pending seek to targetFrame (clamped to ≥0). Per the data
// model's seek-target field, the actual repositioning happens at the top of
// the next DecodeNextFrame call, preempting whatever it would otherwise
// decode, rather than running synchronously here.
func (c *Clip) Seek(targetFrame int64) error {
	if targetFrame < 0 {
		targetFrame = 0
	}
	c.mu.Lock()
	c.seekFrame = targetFrame
	c.mu.Unlock()
	return nil
}

// executeSeek runs spec §4.7's full seek procedure against targetFrame: pin
// the clock, reset decode state, coarse-seek to the nearest key frame,
// prime the decoder's granule baseline, fine-seek forward to the target,
// and realign the audio queue.
func (c *Clip) executeSeek(targetFrame int64) error {
	fps := c.fps()
	var time float64
	if fps > 0 {
		time = float64(targetFrame) / fps
	}

	c.clock.SeekTo(time)
	wasPlaying := !c.clock.Paused()
	if wasPlaying {
		c.clock.Pause()
	}

	c.mu.Lock()
	c.endOfFile = false
	c.restarted = false
	c.mu.Unlock()
	c.queue.ResetAll()

	c.video.stream.reset()
	c.video.codec.Free()
	if err := c.video.codec.Alloc(); err != nil {
		return wrapErr(ErrKindSeekFailed, err, "seek: reallocating video decoder")
	}

	c.audioMu.Lock()
	if c.audio != nil {
		c.audio.stream.reset()
		c.audio.restart()
	}
	c.audioMu.Unlock()

	keyFrame, err := coarseSeek(c.src, c.sync, c.video.codec, c.video.stream.serial, targetFrame)
	if err != nil {
		return err
	}

	granuleSet := false
	if keyFrame <= 1 {
		if err := c.video.codec.SetGranule(seekGranuleInit(c.video.codec)); err != nil {
			return wrapErr(ErrKindSeekFailed, err, "seek: priming video granule baseline")
		}
		granuleSet = true
	}

	c.sync.reset()
	if err := fineSeek(c.video, c.pullMore, targetFrame, granuleSet); err != nil {
		return err
	}

	if c.audio != nil {
		c.audioMu.Lock()
		err := c.audio.realignAfterSeek(time, c.pullMore)
		c.audioMu.Unlock()
		if err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.lastDecodedFrameNumber = targetFrame
	c.mu.Unlock()

	if wasPlaying {
		c.clock.Play()
	}
	return nil
}

// SetAutoRestart controls whether DecodeNextFrame loops back to the start
// of the stream at end of file instead of returning false.
func (c *Clip) SetAutoRestart(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoRestart = enabled
}

// SetAudioGain sets the linear gain applied to subsequently decoded audio.
// A no-op on video-only clips.
func (c *Clip) SetAudioGain(gain float64) {
	if c.audio == nil {
		return
	}
	c.audioMu.Lock()
	defer c.audioMu.Unlock()
	c.audio.setGain(gain)
}

// Width and Height are the coded frame dimensions.
func (c *Clip) Width() int  { return c.width }
func (c *Clip) Height() int { return c.height }

// PictureRect is the visible picture rectangle within the coded frame.
func (c *Clip) PictureRect() (x, y, w, h int) {
	return c.picX, c.picY, c.picWidth, c.picHeight
}

// FrameRate returns the stream's frame rate as a fraction.
func (c *Clip) FrameRate() (num, den uint32) { return c.frameRateNum, c.frameRateDen }

// Duration returns the probed clip duration and whether probing succeeded.
func (c *Clip) Duration() (float64, bool) { return c.duration, c.durationKnown }

// HasAudio reports whether an audio stream was selected.
func (c *Clip) HasAudio() bool { return c.audio != nil }

// AudioFormat returns the selected audio stream's channel count and sample
// rate. Zero values if HasAudio is false.
func (c *Clip) AudioFormat() (channels, sampleRate int) {
	return c.audioChannelsCount, c.audioSampleRate
}

// DroppedFramesCount is the cumulative number of frames skipped by the
// drop-ahead policy across the clip's lifetime.
func (c *Clip) DroppedFramesCount() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.droppedFramesCount
}

// EndOfFile reports whether the last DecodeNextFrame call reached the end
// of the stream (always false once AutoRestart has looped it).
func (c *Clip) EndOfFile() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.endOfFile
}

// Iteration is the number of times the clip has restarted, 0 for the first
// playthrough.
func (c *Clip) Iteration() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.iteration
}

// Close closes the audio sink, then releases the audio and video decode
// contexts with their streams, then the container sync state, in that order.
func (c *Clip) Close() {
	if c.sink != nil {
		if err := c.sink.Close(); err != nil {
			c.log.Warn("closing audio sink", "error", err)
		}
	}
	if c.audio != nil {
		c.audio.codec.Close()
		c.audio.stream.clear()
	}
	c.video.codec.Close()
	c.video.stream.clear()
	c.sync.clear()
}
