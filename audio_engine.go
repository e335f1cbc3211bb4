package theoraclip

// AudioPacket is one block of decoded, gain-applied, interleaved PCM audio
// queued for an AudioSink. Packets are linked in presentation order; the
// queue's head is always the oldest still-undelivered packet.
type AudioPacket struct {
	pcm       []float32
	channels  int
	timestamp float64
	next      *AudioPacket
}

// Samples returns the packet's interleaved PCM data.
func (p *AudioPacket) Samples() []float32 { return p.pcm }

// Count returns the number of per-channel frames in the packet.
func (p *AudioPacket) Count() int {
	if p.channels == 0 {
		return 0
	}
	return len(p.pcm) / p.channels
}

// Timestamp returns the presentation time of the packet's first frame.
func (p *AudioPacket) Timestamp() float64 { return p.timestamp }

// audioQueue is the ordered backlog of decoded-but-undelivered AudioPackets,
// used both for normal playback draining and for the trim/pad realignment a
// seek performs against whatever audio had already been decoded ahead of
// the new position.
type audioQueue struct {
	head, tail *AudioPacket
	frames     int // total per-channel frames currently queued
	channels   int
}

func (q *audioQueue) push(p *AudioPacket) {
	q.channels = p.channels
	if q.tail == nil {
		q.head, q.tail = p, p
	} else {
		q.tail.next = p
		q.tail = p
	}
	q.frames += p.Count()
}

func (q *audioQueue) popHead() *AudioPacket {
	if q.head == nil {
		return nil
	}
	p := q.head
	q.head = p.next
	if q.head == nil {
		q.tail = nil
	}
	q.frames -= p.Count()
	p.next = nil
	return p
}

func (q *audioQueue) drain() []*AudioPacket {
	var out []*AudioPacket
	for p := q.popHead(); p != nil; p = q.popHead() {
		out = append(out, p)
	}
	return out
}

func (q *audioQueue) reset() {
	q.head, q.tail = nil, nil
	q.frames = 0
}

// trimFront drops n per-channel frames from the front of the queue,
// splitting the head packet if n lands inside it. Used after a seek lands
// inside audio that was already decoded ahead of the target.
func (q *audioQueue) trimFront(n int) {
	for n > 0 && q.head != nil {
		head := q.head
		count := head.Count()
		if n < count {
			head.pcm = head.pcm[n*head.channels:]
			q.frames -= n
			return
		}
		n -= count
		q.popHead()
	}
}

// padFront prepends n per-channel frames of silence, used when a seek lands
// earlier than any audio already queued and the gap must be bridged rather
// than skipped.
func (q *audioQueue) padFront(n int, channels int, atTime float64) {
	if n <= 0 {
		return
	}
	silence := &AudioPacket{
		pcm:       make([]float32, n*channels),
		channels:  channels,
		timestamp: atTime,
		next:      q.head,
	}
	if q.head == nil {
		q.tail = silence
	}
	q.head = silence
	q.frames += n
	q.channels = channels
}

// audioEngine drives one selected Vorbis stream: pulling packets from its
// ogg stream, running them through the codec, applying gain, and queuing
// the resulting PCM for an AudioSink.
type audioEngine struct {
	codec  audioCodec
	stream *streamState

	queue audioQueue
	gain  float32

	// timestamp latches to the first packet granule's presentation time
	// seen since the last restart/seek; negative means not yet latched, in
	// which case the seek engine keeps pumping rather than realigning.
	// readPast marks that a second granule-bearing packet has arrived since
	// then, after which timestamp advances incrementally by sample count
	// rather than relatching from each packet's own granule.
	timestamp float64
	readPast  bool

	// readSamples is the running per-channel-frame count drained since the
	// last restart/seek, used for the pump loop's audio-lead calculation
	// (spec's readAudioSamples).
	readSamples float64
}

func newAudioEngine(codec audioCodec, stream *streamState) *audioEngine {
	return &audioEngine{codec: codec, stream: stream, gain: 1, timestamp: -1}
}

// pump implements the audio decode engine's main loop (spec §4.6): drain
// whatever PCM is already synthesized, and when none is ready, feed in
// packets — latching timestamp from the first granule seen and marking
// readPast on the next one — until the audio lead over videoTime reaches
// minLead or the container has nothing more to offer right now.
func (e *audioEngine) pump(videoTime, minLead float64, pullMore pullMoreFunc) []*AudioPacket {
	var produced []*AudioPacket
	for {
		if e.drainPCM(&produced) {
			continue
		}

		pkt, status := e.stream.packetOut()
		switch status {
		case packetOK:
			if err := e.codec.Synthesis(pkt); err == nil {
				e.observeGranule(pkt.Granule())
			}
		case packetHole:
			// retry immediately, same leniency as the video engine
		case packetNeedMore:
			sampleRate := e.codec.SampleRate()
			var audioTime float64
			if sampleRate > 0 {
				audioTime = e.readSamples / float64(sampleRate)
			}
			if audioTime-videoTime >= minLead {
				return produced
			}
			if !pullMore() {
				return produced
			}
		}
	}
}

// observeGranule implements spec §4.6 step 2's granule bookkeeping: the
// first non-negative granule seen latches timestamp; any granule after that
// just marks that decoding has moved past the latch point.
func (e *audioEngine) observeGranule(granule int64) {
	if granule < 0 {
		return
	}
	if e.timestamp < 0 {
		e.timestamp = e.codec.GranuleTime(granule)
		return
	}
	e.readPast = true
}

// drainPCM pulls whatever PCM the synthesizer currently has ready, enqueues
// it as a gain-applied AudioPacket stamped with the engine's current
// timestamp, accumulates readSamples, and — once readPast is set — advances
// timestamp by the packet's own duration per spec §4.6 step 4.
func (e *audioEngine) drainPCM(produced *[]*AudioPacket) bool {
	samples, count, ok := e.codec.PCMOut()
	if !ok || count == 0 {
		return false
	}
	channels := len(samples)
	interleaved := make([]float32, count*channels)
	for frame := 0; frame < count; frame++ {
		for ch := 0; ch < channels; ch++ {
			interleaved[frame*channels+ch] = samples[ch][frame] * e.gain
		}
	}
	pkt := &AudioPacket{pcm: interleaved, channels: channels, timestamp: e.timestamp}
	e.queue.push(pkt)
	*produced = append(*produced, pkt)
	e.codec.PCMRead(count)

	e.readSamples += float64(count)
	if e.readPast {
		if sampleRate := e.codec.SampleRate(); sampleRate > 0 {
			e.timestamp += float64(count) / float64(sampleRate)
		}
	}
	return true
}

// setGain updates the linear gain applied to every subsequently decoded
// audio packet. Already-queued packets are unaffected.
func (e *audioEngine) setGain(gain float64) {
	e.gain = float32(gain)
}

// restart resets the synthesizer and drops any queued audio, mirroring the
// video decode engine's restart.
func (e *audioEngine) restart() {
	e.codec.Restart()
	e.queue.reset()
	e.timestamp = -1
	e.readPast = false
	e.readSamples = 0
}

// realignAfterSeek implements spec §4.7 step 9: pumps (discarding its
// return value — the produced packets are already queued by drainPCM) until
// a packet granule has latched timestamp, then trims or pads the queue so
// its effective head lines up with targetTime, and finally sets readSamples
// from the latched timestamp per step 10.
func (e *audioEngine) realignAfterSeek(targetTime float64, pullMore pullMoreFunc) error {
	for e.timestamp < 0 {
		if e.drainPCM(new([]*AudioPacket)) {
			continue
		}
		pkt, status := e.stream.packetOut()
		switch status {
		case packetOK:
			if err := e.codec.Synthesis(pkt); err == nil {
				e.observeGranule(pkt.Granule())
			}
		case packetHole:
		case packetNeedMore:
			if !pullMore() {
				return wrapErr(ErrKindSeekFailed, nil, "audio realignment exhausted stream before a packet granule latched")
			}
		}
	}

	e.realign(targetTime)

	if sampleRate := e.codec.SampleRate(); sampleRate > 0 {
		e.readSamples = e.timestamp * float64(sampleRate)
	}
	return nil
}

// realign trims or pads the front of the queue so that it starts at
// targetTime, using the engine's latched timestamp and total queued
// duration as the reference — not any individual packet's own stored
// timestamp. headTime is the presentation time of whatever is currently at
// the front of the queue.
func (e *audioEngine) realign(targetTime float64) {
	sampleRate := e.codec.SampleRate()
	if sampleRate <= 0 {
		return
	}
	rate := float64(sampleRate)
	queuedTime := float64(e.queue.frames) / rate
	headTime := e.timestamp - queuedTime

	if targetTime > headTime {
		for e.queue.head != nil {
			packetDuration := float64(e.queue.head.Count()) / rate
			if targetTime <= headTime+packetDuration {
				trimFrames := int((targetTime - headTime) * rate)
				e.queue.trimFront(trimFrames)
				return
			}
			headTime += packetDuration
			e.queue.popHead()
		}
		return
	}

	missing := int((headTime - targetTime) * rate)
	if missing > 0 {
		e.queue.padFront(missing, e.codec.Channels(), targetTime)
	}
}
