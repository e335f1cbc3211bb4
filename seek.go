package theoraclip

// seekPageProbeReads bounds how many pages a single binary-search probe
// will skip over looking for one that belongs to the video stream and
// carries a granule position, matching the original player's _seekPage
// retry budget for sparse-granule regions.
const seekPageProbeReads = 64

// maxCoarseSeekProbes bounds the binary search itself, per spec §4.7 step 5.
const maxCoarseSeekProbes = 100

// seekCloseEnoughFrames is the tolerance window the binary search accepts as
// "close enough" to targetFrame without narrowing further: landing at least
// one and fewer than this many frames before the target is fine, since fine
// seek decodes forward from there anyway.
const seekCloseEnoughFrames = 10

// coarseSeek implements spec §4.7 steps 5-6: first locate the key frame
// nearest targetFrame (deriving frame numbers from the key-frame granule
// shift), then re-run the same binary search targeting the frame just
// before that key frame, this time deriving plain decoded-frame numbers and leaving the
// data source positioned at the final probe offset for fineSeek to resume
// from. It returns the key frame number found by the first pass.
func coarseSeek(src DataSource, sync *syncState, video videoCodec, videoSerial uint32, targetFrame int64) (keyFrame int64, err error) {
	shift := video.KeyframeGranuleShift()
	keyFrame, _, err = bisectCoarseSeek(src, sync, videoSerial, targetFrame, func(granule int64) int64 {
		return granule >> shift
	})
	if err != nil {
		return 0, err
	}

	positionTarget := keyFrame
	if positionTarget > 0 {
		positionTarget--
	}
	_, mid, err := bisectCoarseSeek(src, sync, videoSerial, positionTarget, video.GranuleFrame)
	if err != nil {
		return 0, err
	}
	sync.reset()
	if err := src.SeekAbs(mid); err != nil {
		return 0, wrapErr(ErrKindSeekFailed, err, "seek: repositioning to final coarse offset")
	}
	return keyFrame, nil
}

// bisectCoarseSeek is the shared binary search behind both coarseSeek
// passes: probe the midpoint of the remaining byte range, read forward for
// a video-stream page with a granule, derive a frame number from it via
// deriveFrame, and narrow the range by comparing that frame against
// targetFrame. It stops early once landed within
// [targetFrame-seekCloseEnoughFrames+1, targetFrame), matching the
// original's tolerance for "close enough."
func bisectCoarseSeek(src DataSource, sync *syncState, videoSerial uint32, targetFrame int64, deriveFrame func(int64) int64) (landedFrame, lastMid int64, err error) {
	if targetFrame <= 0 {
		if err := src.SeekAbs(0); err != nil {
			return 0, 0, wrapErr(ErrKindSeekFailed, err, "seek: seeking to start")
		}
		return 0, 0, nil
	}

	size, known := src.Size()
	if !known {
		return 0, 0, wrapErr(ErrKindSeekFailed, nil, "data source has no known size")
	}

	lo, hi := int64(0), size
	for probe := 0; probe < maxCoarseSeekProbes && lo < hi; probe++ {
		mid := lo + (hi-lo)/2
		lastMid = mid
		if err := src.SeekAbs(mid); err != nil {
			return 0, 0, wrapErr(ErrKindSeekFailed, err, "seek: seeking to probe offset")
		}
		sync.reset()

		granule, found := probePageGranule(src, sync, videoSerial)
		if !found {
			hi = mid
			continue
		}

		frame := deriveFrame(granule)
		landedFrame = frame

		if diff := targetFrame - frame; diff >= 1 && diff < seekCloseEnoughFrames {
			break
		}
		if targetFrame-1 > frame {
			lo = mid
		} else {
			hi = mid
		}
	}

	return landedFrame, lastMid, nil
}

// probePageGranule reads forward from the data source's current position
// until a page belonging to the video stream and carrying a non-negative
// granule position is found, or the retry budget is exhausted. Pages
// belonging to any other stream (typically audio) are skipped rather than
// consulted, since the binary search narrows purely on video frame numbers.
func probePageGranule(src DataSource, sync *syncState, videoSerial uint32) (granule int64, found bool) {
	for attempt := 0; attempt < seekPageProbeReads; attempt++ {
		page, status := sync.pageOut()
		switch status {
		case pageOK:
			if page.serial() != videoSerial {
				continue
			}
			if g := page.granule(); g >= 0 {
				return g, true
			}
			continue
		case pageHole:
			continue
		case pageNeedMore:
			buf := sync.buffer(bootstrapBufferSize)
			n, err := src.Read(buf)
			if n <= 0 || err != nil {
				return 0, false
			}
			sync.wrote(n)
		}
	}
	return 0, false
}

// seekGranuleInit returns the granule value spec §4.7 step 7 primes the
// decoder with when the coarse seek lands on key frame number 0 or 1:
// Theora streams encoded by exactly version 3.2.0 interpret granule
// positions differently than every later version.
func seekGranuleInit(codec videoCodec) int64 {
	if codec.VersionIs320() {
		return 0
	}
	return 1
}

// fineSeek implements spec §4.7 step 8: decode forward from wherever the
// coarse seek left the container until the decoded frame number reaches at
// least targetFrame-1, discarding every frame along the way. Unlike the
// steady-state decode loop, fine seek never touches the frame queue and
// tolerates decode errors by skipping the packet, matching the original
// player's leniency during this one pass.
func fineSeek(video *videoEngine, pullMore pullMoreFunc, targetFrame int64, granuleAlreadySet bool) error {
	if targetFrame == 0 {
		return nil
	}

	granuleSet := granuleAlreadySet
	for attempt := 0; ; attempt++ {
		pkt, status := video.stream.packetOut()
		switch status {
		case packetOK:
			if !granuleSet {
				if pkt.Granule() < 0 {
					continue // ignore delta frames preceding the first key frame
				}
				if err := video.codec.SetGranule(pkt.Granule()); err != nil {
					return wrapErr(ErrKindSeekFailed, err, "fine seek: priming granule baseline")
				}
				granuleSet = true
			}

			granule, decodeStatus, err := video.codec.PacketIn(pkt)
			if err != nil || decodeStatus == DecodeSkip {
				continue
			}
			frame := video.codec.GranuleFrame(granule)
			if frame >= targetFrame-1 {
				return nil
			}
		case packetHole:
			if attempt >= maxPacketRetries {
				return wrapErr(ErrKindDecodeHole, nil, "fine seek out of sync past retry budget")
			}
		case packetNeedMore:
			if !pullMore() {
				return wrapErr(ErrKindSeekFailed, nil, "fine seek exhausted stream before reaching target")
			}
		}
	}
}
