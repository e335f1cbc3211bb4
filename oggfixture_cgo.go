package theoraclip

/*
#cgo pkg-config: ogg
#include <ogg/ogg.h>
*/
import "C"

import (
	"testing"
	"unsafe"
)

// oggTestPacket is one packet to encode via buildOggPages.
type oggTestPacket struct {
	granule  int64
	bos, eos bool
	payload  []byte
}

// buildOggPages encodes packets as a sequence of one-packet-per-page raw Ogg
// bytes, using a single real libogg encoder stream (ogg_stream_packetin +
// ogg_stream_flush per packet) so page sequence numbers are correctly
// continuous, the way an actual encoder would produce them, rather than
// stringing together independently-initialized single-page fixtures.
func buildOggPages(t *testing.T, serial uint32, packets []oggTestPacket) []byte {
	t.Helper()

	var os C.ogg_stream_state
	if C.ogg_stream_init(&os, C.int(serial)) != 0 {
		t.Fatal("ogg_stream_init failed")
	}
	defer C.ogg_stream_clear(&os)

	var out []byte
	for i, p := range packets {
		var pkt C.ogg_packet
		if len(p.payload) > 0 {
			pkt.packet = (*C.uchar)(unsafe.Pointer(&p.payload[0]))
		}
		pkt.bytes = C.long(len(p.payload))
		if p.bos {
			pkt.b_o_s = 1
		}
		if p.eos {
			pkt.e_o_s = 1
		}
		pkt.granulepos = C.ogg_int64_t(p.granule)
		pkt.packetno = C.ogg_int64_t(i)

		if C.ogg_stream_packetin(&os, &pkt) != 0 {
			t.Fatal("ogg_stream_packetin failed")
		}

		var page C.ogg_page
		if C.ogg_stream_flush(&os, &page) == 0 {
			t.Fatal("ogg_stream_flush produced no page")
		}
		header := C.GoBytes(unsafe.Pointer(page.header), C.int(page.header_len))
		body := C.GoBytes(unsafe.Pointer(page.body), C.int(page.body_len))
		out = append(out, header...)
		out = append(out, body...)
	}
	return out
}

// encodeOggPage is a one-packet convenience wrapper around buildOggPages,
// used where a test needs a single standalone page (e.g. a foreign-serial
// fixture) rather than a continuous stream.
func encodeOggPage(t *testing.T, serial uint32, seq int64, granule int64, bos, eos bool, payload []byte) []byte {
	t.Helper()
	return buildOggPages(t, serial, []oggTestPacket{{granule: granule, bos: bos, eos: eos, payload: payload}})
}
