package theoraclip

import "testing"

func TestDrainPCMAppliesGainAndInterleaves(t *testing.T) {
	codec := newFakeAudioCodec(2, 44100)
	codec.queued = [][]float32{
		{1, 1, 1, 1, 1, 1}, // 3 stereo frames, interleaved L,R,L,R,L,R all 1.0
	}
	e := &audioEngine{codec: codec, gain: 0.5}

	var produced []*AudioPacket
	ok := e.drainPCM(&produced)
	if !ok {
		t.Fatal("drainPCM should report it produced a packet")
	}
	if len(produced) != 1 {
		t.Fatalf("produced %d packets, want 1", len(produced))
	}
	for _, s := range produced[0].Samples() {
		if s != 0.5 {
			t.Fatalf("sample = %v, want 0.5 after applying gain", s)
		}
	}
	if produced[0].Count() != 3 {
		t.Fatalf("Count() = %d, want 3", produced[0].Count())
	}
	if e.queue.frames != 3 {
		t.Fatalf("queue.frames = %d, want 3", e.queue.frames)
	}
	// readPast is observeGranule's responsibility, not drainPCM's; a bare
	// drainPCM call never touches it.
	if e.readPast {
		t.Fatal("readPast should remain unset by drainPCM alone")
	}
}

func TestDrainPCMReportsFalseWhenNothingReady(t *testing.T) {
	codec := newFakeAudioCodec(2, 44100)
	e := &audioEngine{codec: codec, gain: 1}

	var produced []*AudioPacket
	if e.drainPCM(&produced) {
		t.Fatal("drainPCM should report false when PCMOut has nothing ready")
	}
	if len(produced) != 0 {
		t.Fatalf("produced %d packets, want 0", len(produced))
	}
}

func TestAudioEngineRestartClearsQueueAndResetsReadPast(t *testing.T) {
	codec := newFakeAudioCodec(2, 44100)
	e := &audioEngine{codec: codec, gain: 1, readPast: true}
	e.queue.push(samplePacket(2, 10, 1, 0))

	e.restart()

	if !codec.restarted {
		t.Fatal("restart should call the codec's Restart")
	}
	if e.queue.frames != 0 {
		t.Fatalf("queue.frames = %d after restart, want 0", e.queue.frames)
	}
	if e.readPast {
		t.Fatal("readPast should be cleared after restart")
	}
	if e.timestamp != -1 {
		t.Fatalf("timestamp = %v after restart, want -1 (unlatched)", e.timestamp)
	}
}

// realign uses e.timestamp (the pump's latched/advanced presentation time)
// and total queued duration as the reference point, not any individual
// packet's own stored timestamp field, per spec's step-9 trim/pad math.
func TestAudioEngineRealignTrimsAheadAndPadsBehind(t *testing.T) {
	codec := newFakeAudioCodec(2, 10) // 10 Hz for easy frame math

	e := &audioEngine{codec: codec, timestamp: 3.0}
	e.queue.push(samplePacket(2, 20, 1, 1.0)) // 20 frames queued = 2.0s, so headTime = 3.0-2.0 = 1.0s

	// Target is 0.5s after headTime: trim 5 frames (0.5s * 10Hz).
	e.realign(1.5)
	if e.queue.frames != 15 {
		t.Fatalf("frames after trimming realign = %d, want 15", e.queue.frames)
	}

	e2 := &audioEngine{codec: codec, timestamp: 3.0}
	e2.queue.push(samplePacket(2, 20, 1, 1.0)) // headTime = 1.0s again
	// Target is 0.5s before headTime: pad 5 frames of silence.
	e2.realign(0.5)
	if e2.queue.frames != 25 {
		t.Fatalf("frames after padding realign = %d, want 25", e2.queue.frames)
	}
}

func TestSetGainAffectsFutureNotPastPackets(t *testing.T) {
	codec := newFakeAudioCodec(1, 44100)
	codec.queued = [][]float32{{1, 1}, {1, 1}}
	e := &audioEngine{codec: codec, gain: 1}

	var produced []*AudioPacket
	e.drainPCM(&produced)
	e.setGain(0.25)
	if e.gain != 0.25 {
		t.Fatalf("gain = %v, want 0.25", e.gain)
	}
	e.drainPCM(&produced)

	if len(produced) != 2 {
		t.Fatalf("produced %d packets, want 2", len(produced))
	}
	if s := produced[0].Samples()[0]; s != 1 {
		t.Fatalf("packet drained before setGain has sample %v, want 1", s)
	}
	if s := produced[1].Samples()[0]; s != 0.25 {
		t.Fatalf("packet drained after setGain has sample %v, want 0.25", s)
	}
}
