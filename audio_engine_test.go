package theoraclip

import "testing"

func samplePacket(channels, frames int, fill float32, timestamp float64) *AudioPacket {
	pcm := make([]float32, channels*frames)
	for i := range pcm {
		pcm[i] = fill
	}
	return &AudioPacket{pcm: pcm, channels: channels, timestamp: timestamp}
}

func TestAudioQueuePushAndDrain(t *testing.T) {
	var q audioQueue
	q.push(samplePacket(2, 10, 1, 0))
	q.push(samplePacket(2, 5, 2, 0.1))

	if q.frames != 15 {
		t.Fatalf("frames = %d, want 15", q.frames)
	}

	packets := q.drain()
	if len(packets) != 2 {
		t.Fatalf("drain returned %d packets, want 2", len(packets))
	}
	if q.frames != 0 || q.head != nil || q.tail != nil {
		t.Fatal("queue should be empty after drain")
	}
}

func TestAudioQueueTrimFrontSplitsHeadPacket(t *testing.T) {
	var q audioQueue
	q.push(samplePacket(2, 10, 1, 0))
	q.push(samplePacket(2, 10, 2, 1))

	q.trimFront(4)

	if q.frames != 16 {
		t.Fatalf("frames after trimming 4 of 20 = %d, want 16", q.frames)
	}
	if q.head.Count() != 6 {
		t.Fatalf("head packet has %d frames left, want 6", q.head.Count())
	}
}

func TestAudioQueueTrimFrontConsumesWholePackets(t *testing.T) {
	var q audioQueue
	q.push(samplePacket(2, 10, 1, 0))
	q.push(samplePacket(2, 10, 2, 1))

	q.trimFront(10)

	if q.frames != 10 {
		t.Fatalf("frames after trimming exactly the head packet = %d, want 10", q.frames)
	}
	if q.head.Count() != 10 {
		t.Fatalf("remaining head packet has %d frames, want 10", q.head.Count())
	}
}

func TestAudioQueuePadFrontPrependsSilence(t *testing.T) {
	var q audioQueue
	q.push(samplePacket(2, 10, 1, 1.0))

	q.padFront(5, 2, 0.8)

	if q.frames != 15 {
		t.Fatalf("frames after padding = %d, want 15", q.frames)
	}
	if q.head.Count() != 5 {
		t.Fatalf("silence packet has %d frames, want 5", q.head.Count())
	}
	for _, s := range q.head.Samples() {
		if s != 0 {
			t.Fatalf("silence packet should be all zero, got %v", s)
		}
	}
}

func TestAudioQueuePadFrontOnEmptyQueue(t *testing.T) {
	var q audioQueue
	q.padFront(5, 2, 0)
	if q.head == nil || q.tail == nil {
		t.Fatal("padding an empty queue should set both head and tail")
	}
	if q.frames != 5 {
		t.Fatalf("frames = %d, want 5", q.frames)
	}
}
