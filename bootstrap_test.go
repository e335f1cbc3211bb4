package theoraclip

import (
	"errors"
	"testing"
)

// bootstrap's actual header validation goes through real libtheora/
// libvorbis calls (th_decode_headerin/vorbis_synthesis_headerin), so these
// tests exercise the pump loop and stream classification/discard paths
// around that boundary rather than fabricating bit-exact codec headers.

func TestBootstrapFailsOnEmptySource(t *testing.T) {
	src := newMemDataSource(nil)
	sync := newSyncState()
	defer sync.clear()

	_, err := bootstrap(src, sync, "")
	if err == nil {
		t.Fatal("expected an error bootstrapping an empty source")
	}
	if !errors.Is(err, ErrTruncatedHeaders) {
		t.Fatalf("err = %v, want ErrTruncatedHeaders", err)
	}
}

func TestBootstrapDiscardsUnrecognizedStreamThenFailsTruncated(t *testing.T) {
	const serial = 42
	// A BOS page whose first packet is neither a Theora nor a Vorbis header;
	// bootstrap should classify and discard it, then hit end of stream still
	// missing a video preamble.
	data := buildOggPages(t, serial, []oggTestPacket{
		{bos: true, granule: -1, payload: []byte("not a codec header")},
	})
	src := newMemDataSource(data)
	sync := newSyncState()
	defer sync.clear()

	_, err := bootstrap(src, sync, "")
	if err == nil {
		t.Fatal("expected an error: no video stream ever appears")
	}
	if !errors.Is(err, ErrTruncatedHeaders) {
		t.Fatalf("err = %v, want ErrTruncatedHeaders", err)
	}
}

func TestBootstrapDiscardsTwoUnrecognizedStreamsThenFailsTruncated(t *testing.T) {
	// Two BOS streams whose first packets neither codec claims; both are
	// discarded at classification, and bootstrap must still fail with a
	// truncated video preamble once the source runs out.
	dataA := buildOggPages(t, 1, []oggTestPacket{{bos: true, granule: -1, payload: []byte("junk-a")}})
	dataB := buildOggPages(t, 2, []oggTestPacket{{bos: true, granule: -1, payload: []byte("junk-b")}})
	src := newMemDataSource(append(dataA, dataB...))
	sync := newSyncState()
	defer sync.clear()

	_, err := bootstrap(src, sync, "")
	if !errors.Is(err, ErrTruncatedHeaders) {
		t.Fatalf("err = %v, want ErrTruncatedHeaders", err)
	}
}
