package theoraclip

/*
#cgo pkg-config: theoradec ogg
#include <theora/theoradec.h>
#include <string.h>
*/
import "C"

import (
	"unsafe"

	"github.com/pkg/errors"
)

// theoraCodec implements videoCodec against libtheora's decode API. It owns
// the th_info/th_comment/th_setup_info accumulated during header bootstrap
// and, once allocated, the th_dec_ctx used for steady-state decoding.
type theoraCodec struct {
	info    C.th_info
	comment C.th_comment
	setup   *C.th_setup_info
	ctx     *C.th_dec_ctx

	headersSeen int
}

func newTheoraCodec() *theoraCodec {
	t := &theoraCodec{}
	C.th_info_init(&t.info)
	C.th_comment_init(&t.comment)
	return t
}

func (t *theoraCodec) HeaderIn(pkt *Packet) (bool, error) {
	cpkt := packetToC(pkt)
	ret := C.th_decode_headerin(&t.info, &t.comment, &t.setup, &cpkt)
	switch {
	case ret > 0:
		if t.headersSeen == 2 && t.setup != nil {
			trackAlloc(ResTheoraSetupInfo, unsafe.Pointer(t.setup))
		}
		t.headersSeen++
		return true, nil
	case ret == C.TH_ENOTFORMAT:
		// Not a Theora packet at all; let the caller try other codecs.
		return false, nil
	default:
		return false, errors.Errorf("theora: header rejected (%d)", int(ret))
	}
}

func (t *theoraCodec) Alloc() error {
	t.Free()
	t.ctx = C.th_decode_alloc(&t.info, t.setup)
	if t.ctx == nil {
		return errors.New("theora: th_decode_alloc failed")
	}
	trackAlloc(ResTheoraDecoder, unsafe.Pointer(t.ctx))
	return nil
}

func (t *theoraCodec) Free() {
	if t.ctx != nil {
		trackFree(unsafe.Pointer(t.ctx))
		C.th_decode_free(t.ctx)
		t.ctx = nil
	}
}

func (t *theoraCodec) PacketIn(pkt *Packet) (int64, DecodeStatus, error) {
	cpkt := packetToC(pkt)
	var granule C.ogg_int64_t
	ret := C.th_decode_packetin(t.ctx, &cpkt, &granule)
	switch ret {
	case 0:
		return int64(granule), DecodeSuccess, nil
	case C.TH_DUPFRAME:
		return int64(granule), DecodeDuplicateFrame, nil
	default:
		return int64(granule), DecodeSkip, nil
	}
}

func (t *theoraCodec) GranuleFrame(granule int64) int64 {
	return int64(C.th_granule_frame(t.ctx, C.ogg_int64_t(granule)))
}

func (t *theoraCodec) GranuleTime(granule int64) float64 {
	return float64(C.th_granule_time(t.ctx, C.ogg_int64_t(granule)))
}

func (t *theoraCodec) KeyframeGranuleShift() uint {
	return uint(t.info.keyframe_granule_shift)
}

func (t *theoraCodec) SetGranule(granule int64) error {
	g := C.ogg_int64_t(granule)
	ret := C.th_decode_ctl(t.ctx, C.TH_DECCTL_SET_GRANPOS, unsafe.Pointer(&g), C.uint(unsafe.Sizeof(g)))
	if ret != 0 {
		return errors.Errorf("theora: TH_DECCTL_SET_GRANPOS failed (%d)", int(ret))
	}
	return nil
}

func (t *theoraCodec) YCbCr() (PlaneSet, error) {
	var buf [3]C.th_ycbcr_buffer
	ret := C.th_decode_ycbcr_out(t.ctx, &buf[0])
	if ret != 0 {
		return PlaneSet{}, errors.Errorf("theora: th_decode_ycbcr_out failed (%d)", int(ret))
	}
	toPlane := func(b C.th_ycbcr_buffer) Plane {
		return Plane{
			Data:   unsafe.Slice((*byte)(unsafe.Pointer(b.data)), int(b.stride)*int(b.height)),
			Stride: int(b.stride),
			Width:  int(b.width),
			Height: int(b.height),
		}
	}
	return PlaneSet{
		Y:  toPlane(buf[0]),
		Cb: toPlane(buf[1]),
		Cr: toPlane(buf[2]),
	}, nil
}

func (t *theoraCodec) VersionIs320() bool {
	return t.info.version_major == 3 && t.info.version_minor == 2 && t.info.version_subminor == 0
}

func (t *theoraCodec) Dimensions() (width, height, picX, picY, picW, picH int) {
	return int(t.info.frame_width), int(t.info.frame_height),
		int(t.info.pic_x), int(t.info.pic_y), int(t.info.pic_width), int(t.info.pic_height)
}

func (t *theoraCodec) FrameRate() (num, den uint32) {
	return uint32(t.info.fps_numerator), uint32(t.info.fps_denominator)
}

func (t *theoraCodec) Close() {
	t.Free()
	if t.setup != nil {
		trackFree(unsafe.Pointer(t.setup))
		C.th_setup_free(t.setup)
		t.setup = nil
	}
	C.th_comment_clear(&t.comment)
	C.th_info_clear(&t.info)
}
