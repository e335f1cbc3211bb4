package theoraclip

import "github.com/pkg/errors"

// maxPacketRetries bounds how many times decodeNextFrame asks pullMore for
// another page before giving up and reporting a decode hole rather than
// spinning forever on a stream that never resynchronizes.
const maxPacketRetries = 100

// videoEngine drives the selected Theora stream: pulling packets, feeding
// the decoder, applying the drop-ahead policy against the presentation
// clock, and publishing decoded frames to a FrameQueue.
type videoEngine struct {
	codec  videoCodec
	stream *streamState
	queue  FrameQueue

	outputMode   OutputMode
	transform    PixelTransform
	usePotStride bool

	frameDuration float64
	frameNumber   int64
	droppedFrames int64
}

func newVideoEngine(codec videoCodec, stream *streamState, queue FrameQueue, opts Options) *videoEngine {
	num, den := codec.FrameRate()
	var duration float64
	if num > 0 {
		duration = float64(den) / float64(num)
	}
	return &videoEngine{
		codec:         codec,
		stream:        stream,
		queue:         queue,
		outputMode:    opts.OutputMode,
		transform:     opts.PixelTransform,
		usePotStride:  opts.UsePotStride,
		frameDuration: duration,
	}
}

// pullMore asks the container layer for another page addressed to this
// stream's serial; it returns false once the data source is exhausted.
type pullMoreFunc func() bool

// decodeNextFrame decodes and publishes at most one frame. restarted
// suppresses the drop-ahead policy for this one call, so the first frame
// decoded after a restart is always published, matching the original
// player's "don't drop right after repositioning" behavior; frameNumber%16
// != 0 additionally exempts every 16th frame so a stalled clock still
// advances a keyframe occasionally.
func (e *videoEngine) decodeNextFrame(clock PresentationClock, restarted bool, pullMore pullMoreFunc) (bool, error) {
	for attempt := 0; ; attempt++ {
		pkt, status := e.stream.packetOut()
		switch status {
		case packetOK:
			return e.submit(pkt, clock, restarted)
		case packetHole:
			if attempt >= maxPacketRetries {
				return false, wrapErr(ErrKindDecodeHole, nil, "video stream out of sync past retry budget")
			}
			continue
		case packetNeedMore:
			if !pullMore() {
				return false, nil // clean end of stream
			}
			if attempt >= maxPacketRetries {
				return false, wrapErr(ErrKindDecodeHole, nil, "video stream starved past retry budget")
			}
		}
	}
}

func (e *videoEngine) submit(pkt *Packet, clock PresentationClock, restarted bool) (bool, error) {
	granule, status, err := e.codec.PacketIn(pkt)
	if err != nil {
		return false, errors.Wrap(err, "theora packet decode")
	}
	if status == DecodeSkip {
		return false, nil
	}

	e.frameNumber = e.codec.GranuleFrame(granule)
	displayTime := e.codec.GranuleTime(granule)

	if displayTime < clock.Now() && !restarted && e.frameNumber%16 != 0 {
		e.droppedFrames++
		return false, nil
	}

	frame := e.queue.RequestEmpty()
	if frame == nil {
		// Consumer hasn't caught up; leave the packet's decode result
		// as-is and let the caller retry this tick once a slot frees.
		return false, nil
	}

	planes, err := e.codec.YCbCr()
	if err != nil {
		e.queue.ReleaseEmpty(frame)
		return false, errors.Wrap(err, "theora ycbcr out")
	}
	if e.usePotStride {
		planes.Y.Stride = potCeil(planes.Y.Stride)
		planes.Cb.Stride = potCeil(planes.Cb.Stride)
		planes.Cr.Stride = potCeil(planes.Cr.Stride)
	}

	var payload any = planes
	if e.outputMode == OutputModeTransform && e.transform != nil {
		payload, err = e.transform.Transform(planes)
		if err != nil {
			e.queue.ReleaseEmpty(frame)
			return false, errors.Wrap(err, "pixel transform")
		}
	}

	frame.Payload = payload
	frame.TimeToDisplay = displayTime - e.frameDuration
	frame.Number = e.frameNumber
	e.queue.Publish(frame)
	return true, nil
}

// restart resets frame counting for a new playback iteration without
// reallocating the decode context (the caller does that separately when the
// stream's granule baseline must also be reset).
func (e *videoEngine) restart() {
	e.frameNumber = 0
}
