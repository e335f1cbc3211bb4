package theoraclip

import "testing"

func TestProbeDurationFindsGranuleInLastWindow(t *testing.T) {
	const serial = 4
	// One page with a granule near the very end of the file: found on the
	// first (smallest) window.
	packets := []oggTestPacket{
		{granule: -1, bos: true, payload: []byte{0}},
		{granule: -1, payload: []byte{1}},
		{granule: 99, eos: true, payload: []byte{2}},
	}
	data := buildOggPages(t, serial, packets)
	src := newMemDataSource(data)

	codec := newFakeVideoCodec()
	codec.keyShift = 0 // GranuleFrame is identity regardless, unaffected by shift

	framesCount, ok := probeDuration(src, codec, serial)
	if !ok {
		t.Fatal("expected probeDuration to find a granule")
	}
	if framesCount != 100 {
		t.Fatalf("framesCount = %d, want 100 (granule 99 + 1)", framesCount)
	}
}

func TestProbeDurationCountsTrailingGranulelessPages(t *testing.T) {
	const serial = 4
	packets := []oggTestPacket{
		{granule: -1, bos: true, payload: []byte{0}},
		{granule: 49, payload: []byte{1}},
		{granule: -1, payload: []byte{2}}, // trailing delta frame, no granule
		{granule: -1, eos: true, payload: []byte{3}},
	}
	data := buildOggPages(t, serial, packets)
	src := newMemDataSource(data)

	codec := newFakeVideoCodec()

	framesCount, ok := probeDuration(src, codec, serial)
	if !ok {
		t.Fatal("expected probeDuration to find a granule")
	}
	// granule 49 -> framesCount 50, then two trailing granule-less pages add
	// one each.
	if framesCount != 52 {
		t.Fatalf("framesCount = %d, want 52", framesCount)
	}
}

func TestProbeDurationIgnoresForeignSerial(t *testing.T) {
	const videoSerial, audioSerial = 4, 9
	packets := []oggTestPacket{
		{granule: 10, bos: true, payload: []byte{0}},
	}
	data := buildOggPages(t, videoSerial, packets)
	audioData := buildOggPages(t, audioSerial, []oggTestPacket{{granule: 999, bos: true, payload: []byte{1}}})
	data = append(data, audioData...)

	src := newMemDataSource(data)
	codec := newFakeVideoCodec()

	framesCount, ok := probeDuration(src, codec, videoSerial)
	if !ok {
		t.Fatal("expected probeDuration to find the video stream's own granule")
	}
	if framesCount != 11 {
		t.Fatalf("framesCount = %d, want 11 (from the video stream's granule 10, not the audio stream's 999)", framesCount)
	}
}

func TestProbeDurationReportsUnknownWhenNoGranuleFound(t *testing.T) {
	const serial = 4
	packets := []oggTestPacket{
		{granule: -1, bos: true, payload: []byte{0}},
		{granule: -1, eos: true, payload: []byte{1}},
	}
	data := buildOggPages(t, serial, packets)
	src := newMemDataSource(data)
	codec := newFakeVideoCodec()

	if _, ok := probeDuration(src, codec, serial); ok {
		t.Fatal("expected probeDuration to report unknown when no page ever carries a granule")
	}
}

func TestProbeDurationEmptySourceReportsUnknown(t *testing.T) {
	src := newMemDataSource(nil)
	codec := newFakeVideoCodec()
	if _, ok := probeDuration(src, codec, 1); ok {
		t.Fatal("expected probeDuration to report unknown for an empty source")
	}
}
