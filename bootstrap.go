package theoraclip

// bootstrapBufferSize is how many bytes are read from the DataSource into
// the sync scratch buffer per fill, matching the container reader's normal
// steady-state read size.
const bootstrapBufferSize = 4096

// candidateAudio is one audio elementary stream discovered during
// bootstrap, tracked from its first BOS page until it either completes its
// three headers or is dropped for an invalid one.
type candidateAudio struct {
	index  int // container insertion order, used by selectAudioStream's tie-break
	stream *streamState
	codec  *vorbisCodec
	done   bool
	failed bool
}

// bootstrapResult is everything header bootstrap hands off to Load: the
// committed video stream and the single selected (or absent) audio stream,
// with every other candidate already torn down.
type bootstrapResult struct {
	videoStream *streamState
	video       *theoraCodec

	audioStream *streamState
	audio       *vorbisCodec
}

// bootstrap classifies BOS pages into a video candidate and zero or more
// audio candidates, feeds pages to each until every candidate either
// completes its three-header preamble or is rejected, then commits the
// video stream and the best-matching audio candidate (per
// selectAudioStream) while discarding the rest.
//
// This mirrors the original player's provisional-ownership bookkeeping
// around TheoraVorbisInfoStruct: every candidate is held provisionally
// until bootstrap either commits or discards it, so a malformed audio
// header never aborts a video stream that is otherwise healthy.
func bootstrap(src DataSource, sync *syncState, preferredLanguage string) (*bootstrapResult, error) {
	readMore := func() bool {
		buf := sync.buffer(bootstrapBufferSize)
		n, err := src.Read(buf)
		if n > 0 {
			sync.wrote(n)
		}
		return err == nil || n > 0
	}

	var videoStream *streamState
	var video *theoraCodec
	videoDone := false

	candidates := make([]*candidateAudio, 0, 2)
	candidateBySerial := make(map[uint32]*candidateAudio)
	nextIndex := 0

	allDone := func() bool {
		if !videoDone {
			return false
		}
		for _, c := range candidates {
			if !c.done && !c.failed {
				return false
			}
		}
		return true
	}
	discardAll := func() {
		for _, c := range candidates {
			c.codec.Close()
			c.stream.clear()
		}
		if video != nil {
			video.Close()
			videoStream.clear()
		}
	}

	for !allDone() {
		page, status := sync.pageOut()
		switch status {
		case pageOK:
			// fall through to classification below
		case pageHole:
			continue
		case pageNeedMore:
			if !readMore() {
				if !videoDone {
					discardAll()
					return nil, wrapErr(ErrKindTruncatedHeaders, nil, "data source exhausted before video headers completed")
				}
				// Audio candidates still pending at EOF are dropped, not
				// fatal.
				for _, c := range candidates {
					if !c.done {
						c.failed = true
					}
				}
				goto commit
			}
			continue
		}

		serial := page.serial()

		if page.beginningOfStream() {
			if c, ok := candidateBySerial[serial]; ok {
				c.stream.pageIn(page)
			} else if videoStream != nil && serial == videoStream.serial {
				videoStream.pageIn(page)
			} else {
				// New elementary stream: classify it from its first packet.
				s := newStreamState(serial)
				s.pageIn(page)
				pkt, pstatus := s.packetOut()
				if pstatus != packetOK {
					s.clear()
					continue
				}
				if videoStream == nil {
					v := newTheoraCodec()
					if ok, err := v.HeaderIn(pkt); err == nil && ok {
						videoStream, video = s, v
						continue
					}
					v.Close()
				}
				a := newVorbisCodec()
				if ok, err := a.HeaderIn(pkt); err == nil && ok {
					c := &candidateAudio{index: nextIndex, stream: s, codec: a}
					nextIndex++
					candidates = append(candidates, c)
					candidateBySerial[serial] = c
					continue
				}
				a.Close()
				s.clear() // neither codec claimed this stream; discard
			}
			continue
		}

		if videoStream != nil && serial == videoStream.serial {
			videoStream.pageIn(page)
		} else if c, ok := candidateBySerial[serial]; ok {
			c.stream.pageIn(page)
		} else {
			continue // page for a stream we already discarded
		}

		drainHeaders(videoStream, video, &videoDone, candidateBySerial[serial])
	}

commit:
	if videoStream == nil || video == nil || !videoDone {
		discardAll()
		return nil, wrapErr(ErrKindTruncatedHeaders, nil, "no complete video header preamble found")
	}
	if err := video.Alloc(); err != nil {
		discardAll()
		return nil, wrapErr(ErrKindInvalidVideoHeader, err, "allocating theora decode context")
	}

	result := &bootstrapResult{videoStream: videoStream, video: video}

	var usable []audioCandidate
	byIndex := make(map[int]*candidateAudio)
	for _, c := range candidates {
		if c.done && !c.failed {
			usable = append(usable, audioCandidate{index: c.index, language: c.codec.Language()})
			byIndex[c.index] = c
		}
	}
	selected := selectAudioStream(usable, preferredLanguage)

	for _, c := range candidates {
		if c.index == selected {
			if err := c.codec.InitSynthesis(); err != nil {
				c.failed = true
				c.codec.Close()
				c.stream.clear()
				continue
			}
			result.audioStream = c.stream
			result.audio = c.codec
			continue
		}
		c.codec.Close()
		c.stream.clear()
	}

	return result, nil
}


// drainHeaders pulls every packet currently available on the given streams
// and feeds each to its codec's HeaderIn, marking completion or failure.
func drainHeaders(videoStream *streamState, video *theoraCodec, videoDone *bool, audio *candidateAudio) {
	if videoStream != nil && !*videoDone {
		for {
			pkt, status := videoStream.packetOut()
			if status != packetOK {
				break
			}
			ok, err := video.HeaderIn(pkt)
			if err != nil {
				*videoDone = false
				break
			}
			if !ok {
				continue
			}
			if video.headersSeen >= 3 {
				*videoDone = true
				break
			}
		}
	}
	if audio != nil && !audio.done && !audio.failed {
		for {
			pkt, status := audio.stream.packetOut()
			if status != packetOK {
				break
			}
			ok, err := audio.codec.HeaderIn(pkt)
			if err != nil {
				audio.failed = true
				break
			}
			if !ok {
				continue
			}
			if audio.codec.headersSeen >= 3 {
				audio.done = true
				break
			}
		}
	}
}
