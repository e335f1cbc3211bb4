package theoraclip

/*
#cgo pkg-config: vorbis ogg
#include <vorbis/codec.h>
#include <stdlib.h>
*/
import "C"

import (
	"strings"
	"unsafe"

	"github.com/pkg/errors"
)

// vorbisCodec implements audioCodec against libvorbis. info/comment
// accumulate the three header packets; dsp/block are only valid between
// InitSynthesis and ClearSynthesis.
type vorbisCodec struct {
	info    C.vorbis_info
	comment C.vorbis_comment
	dsp     C.vorbis_dsp_state
	block   C.vorbis_block

	headersSeen int
	dspReady    bool
}

func newVorbisCodec() *vorbisCodec {
	v := &vorbisCodec{}
	C.vorbis_info_init(&v.info)
	C.vorbis_comment_init(&v.comment)
	return v
}

func (v *vorbisCodec) HeaderIn(pkt *Packet) (bool, error) {
	cpkt := packetToC(pkt)
	ret := C.vorbis_synthesis_headerin(&v.info, &v.comment, &cpkt)
	switch {
	case ret == 0:
		v.headersSeen++
		return true, nil
	case ret == C.OV_ENOTVORBIS:
		return false, nil
	default:
		return false, errors.Errorf("vorbis: header rejected (%d)", int(ret))
	}
}

func (v *vorbisCodec) InitSynthesis() error {
	if ret := C.vorbis_synthesis_init(&v.dsp, &v.info); ret != 0 {
		return errors.Errorf("vorbis: vorbis_synthesis_init failed (%d)", int(ret))
	}
	trackAlloc(ResVorbisDSPState, unsafe.Pointer(&v.dsp))
	if ret := C.vorbis_block_init(&v.dsp, &v.block); ret != 0 {
		return errors.Errorf("vorbis: vorbis_block_init failed (%d)", int(ret))
	}
	trackAlloc(ResVorbisBlock, unsafe.Pointer(&v.block))
	v.dspReady = true
	return nil
}

func (v *vorbisCodec) ClearSynthesis() {
	if !v.dspReady {
		return
	}
	trackFree(unsafe.Pointer(&v.block))
	C.vorbis_block_clear(&v.block)
	trackFree(unsafe.Pointer(&v.dsp))
	C.vorbis_dsp_clear(&v.dsp)
	v.dspReady = false
}

func (v *vorbisCodec) Synthesis(pkt *Packet) error {
	cpkt := packetToC(pkt)
	if C.vorbis_synthesis(&v.block, &cpkt) != 0 {
		// Packet rejected by the synthesizer (e.g. a non-audio packet that
		// slipped through); caller treats this as a dropped packet, not an
		// engine error.
		return nil
	}
	C.vorbis_synthesis_blockin(&v.dsp, &v.block)
	return nil
}

func (v *vorbisCodec) PCMOut() ([][]float32, int, bool) {
	var pcm **C.float
	count := int(C.vorbis_synthesis_pcmout(&v.dsp, &pcm))
	if count <= 0 {
		return nil, 0, false
	}
	channels := int(v.info.channels)
	pcmSlice := unsafe.Slice(pcm, channels)
	out := make([][]float32, channels)
	for ch := 0; ch < channels; ch++ {
		src := unsafe.Slice((*float32)(unsafe.Pointer(pcmSlice[ch])), count)
		chanBuf := make([]float32, count)
		copy(chanBuf, src)
		out[ch] = chanBuf
	}
	return out, count, true
}

func (v *vorbisCodec) PCMRead(n int) {
	C.vorbis_synthesis_read(&v.dsp, C.int(n))
}

func (v *vorbisCodec) GranuleTime(granule int64) float64 {
	return float64(C.vorbis_granule_time(&v.dsp, C.ogg_int64_t(granule)))
}

func (v *vorbisCodec) Restart() {
	C.vorbis_synthesis_restart(&v.dsp)
}

func (v *vorbisCodec) Channels() int   { return int(v.info.channels) }
func (v *vorbisCodec) SampleRate() int { return int(v.info.rate) }

// Language scans the accumulated comment tags for a LANGUAGE= entry, the
// same tag the original player's findlanguage helper reads.
func (v *vorbisCodec) Language() string {
	n := int(v.comment.comments)
	if n == 0 || v.comment.user_comments == nil {
		return ""
	}
	comments := unsafe.Slice(v.comment.user_comments, n)
	lengths := unsafe.Slice(v.comment.comment_lengths, n)
	const prefix = "LANGUAGE="
	for i := 0; i < n; i++ {
		if comments[i] == nil {
			continue
		}
		s := C.GoStringN(comments[i], lengths[i])
		if len(s) > len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
			return s[len(prefix):]
		}
	}
	return ""
}

func (v *vorbisCodec) Close() {
	v.ClearSynthesis()
	C.vorbis_comment_clear(&v.comment)
	C.vorbis_info_clear(&v.info)
}
