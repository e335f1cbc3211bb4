package theoraclip

/*
#cgo pkg-config: ogg
#include <ogg/ogg.h>
*/
import "C"

import "unsafe"

// Packet is a codec-level unit produced by a stream's reassembler from one
// or more pages (see the container-state entry in the data model).
type Packet struct {
	data       []byte
	granulePos int64
	bos        bool
	eos        bool
	packetNo   int64
}

// newPacket copies an ogg_packet's payload into Go-owned memory. libogg
// reuses the backing buffer on the next packetout call, so the copy (not a
// zero-copy slice) is required here, unlike the teacher's RawData()/Data()
// split for AVPacket buffers that outlive a single read.
func newPacket(c *C.ogg_packet) *Packet {
	pkt := &Packet{
		granulePos: int64(c.granulepos),
		bos:        c.b_o_s != 0,
		eos:        c.e_o_s != 0,
		packetNo:   int64(c.packetno),
	}
	if c.bytes > 0 && c.packet != nil {
		pkt.data = C.GoBytes(unsafe.Pointer(c.packet), C.int(c.bytes))
	}
	return pkt
}

// Data returns the packet's raw bitstream payload.
func (p *Packet) Data() []byte { return p.data }

// Granule returns the packet's granule position, or a negative value if the
// packet carries none.
func (p *Packet) Granule() int64 { return p.granulePos }

// BOS reports whether this packet is the first of its stream.
func (p *Packet) BOS() bool { return p.bos }

// EOS reports whether this packet is the last of its stream.
func (p *Packet) EOS() bool { return p.eos }
