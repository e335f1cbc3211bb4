package theoraclip

/*
#cgo pkg-config: ogg
#include <ogg/ogg.h>
*/
import "C"

import "unsafe"

// syncState wraps an ogg_sync_state: the byte-level page synchronization
// scratch buffer referred to as "Container state" in the data model.
type syncState struct {
	state C.ogg_sync_state
}

func newSyncState() *syncState {
	s := &syncState{}
	C.ogg_sync_init(&s.state)
	trackAlloc(ResOggSyncState, unsafe.Pointer(&s.state))
	return s
}

// reset discards any partially-synced data, used before coarse-seek probes
// and on restart.
func (s *syncState) reset() {
	C.ogg_sync_reset(&s.state)
}

func (s *syncState) clear() {
	trackFree(unsafe.Pointer(&s.state))
	C.ogg_sync_clear(&s.state)
}

// buffer returns a Go slice viewing n bytes of libogg's internal scratch
// buffer. The caller fills it and calls wrote with the number of bytes
// actually written before the next pageOut.
func (s *syncState) buffer(n int) []byte {
	ptr := C.ogg_sync_buffer(&s.state, C.long(n))
	return unsafe.Slice((*byte)(unsafe.Pointer(ptr)), n)
}

func (s *syncState) wrote(n int) {
	C.ogg_sync_wrote(&s.state, C.long(n))
}

// pageOutStatus mirrors ogg_sync_pageout's three-way return.
type pageOutStatus int

const (
	pageNeedMore pageOutStatus = 0
	pageHole     pageOutStatus = -1
	pageOK       pageOutStatus = 1
)

// pageOut drains at most one complete page from the scratch buffer.
func (s *syncState) pageOut() (*oggPage, pageOutStatus) {
	var cPage C.ogg_page
	status := C.ogg_sync_pageout(&s.state, &cPage)
	switch {
	case status > 0:
		return &oggPage{page: cPage}, pageOK
	case status < 0:
		return nil, pageHole
	default:
		return nil, pageNeedMore
	}
}

// oggPage wraps an ogg_page, valid only until the next sync operation on the
// syncState that produced it.
type oggPage struct {
	page C.ogg_page
}

func (p *oggPage) serial() uint32         { return uint32(C.ogg_page_serialno(&p.page)) }
func (p *oggPage) granule() int64         { return int64(C.ogg_page_granulepos(&p.page)) }
func (p *oggPage) beginningOfStream() bool { return C.ogg_page_bos(&p.page) != 0 }

// streamState wraps an ogg_stream_state, the per-stream packet reassembly
// state keyed by stream serial number.
type streamState struct {
	state  C.ogg_stream_state
	serial uint32
}

func newStreamState(serial uint32) *streamState {
	s := &streamState{serial: serial}
	C.ogg_stream_init(&s.state, C.int(serial))
	trackAlloc(ResOggStreamState, unsafe.Pointer(&s.state))
	return s
}

func (s *streamState) pageIn(p *oggPage) {
	C.ogg_stream_pagein(&s.state, &p.page)
}

func (s *streamState) reset() {
	C.ogg_stream_reset(&s.state)
}

func (s *streamState) clear() {
	trackFree(unsafe.Pointer(&s.state))
	C.ogg_stream_clear(&s.state)
}

// packetOutStatus mirrors ogg_stream_packetout's three-way return: "need
// more data" (0), "hole" / out-of-sync (-1, retry per §4.1), or "ok" (1).
type packetOutStatus int

const (
	packetNeedMore packetOutStatus = 0
	packetHole     packetOutStatus = -1
	packetOK       packetOutStatus = 1
)

// packetToC rebuilds a C ogg_packet from a Go Packet so it can be handed to
// the Theora/Vorbis header-parsing and decode entry points, which take
// ogg_packet by pointer. theora.go and vorbis.go both include <ogg/ogg.h>
// (directly or transitively via their codec headers), so C.ogg_packet there
// is the same cgo-unified type as here.
func packetToC(pkt *Packet) C.ogg_packet {
	var c C.ogg_packet
	if len(pkt.data) > 0 {
		c.packet = (*C.uchar)(unsafe.Pointer(&pkt.data[0]))
	}
	c.bytes = C.long(len(pkt.data))
	if pkt.bos {
		c.b_o_s = 1
	}
	if pkt.eos {
		c.e_o_s = 1
	}
	c.granulepos = C.ogg_int64_t(pkt.granulePos)
	c.packetno = C.ogg_int64_t(pkt.packetNo)
	return c
}

func (s *streamState) packetOut() (*Packet, packetOutStatus) {
	var cPacket C.ogg_packet
	status := C.ogg_stream_packetout(&s.state, &cPacket)
	switch {
	case status > 0:
		return newPacket(&cPacket), packetOK
	case status < 0:
		return nil, packetHole
	default:
		return nil, packetNeedMore
	}
}
