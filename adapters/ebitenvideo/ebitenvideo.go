// Package ebitenvideo provides a theoraclip.PixelTransform that converts
// decoded planar YCbCr into RGBA via libswscale, the same conversion
// library the original player used for its own AVFrame pixel format
// conversion, plus a Sprite helper for uploading the result into an
// github.com/hajimehoshi/ebiten window with an optional debug HUD.
package ebitenvideo

/*
#cgo pkg-config: libswscale libavutil
#include <libswscale/swscale.h>
#include <libavutil/pixfmt.h>
#include <stdlib.h>
*/
import "C"

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"unsafe"

	"github.com/hajimehoshi/ebiten"
	_ "github.com/silbinarywolf/preferdiscretegpu"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/zimwip/theoraclip"
)

// Transform converts each decoded frame's YCbCr planes to an RGBA image
// using a cached sws_getContext, reallocated only when the frame dimensions
// change (a restart or a source swap).
type Transform struct {
	swsCtx       *C.struct_SwsContext
	width        int
	height       int
	dstSrcStride [1]C.int
	rgba         *image.RGBA
}

// New returns a Transform ready to use as a theoraclip.Options.PixelTransform.
func New() *Transform { return &Transform{} }

func (t *Transform) ensureContext(width, height int) {
	if t.swsCtx != nil && t.width == width && t.height == height {
		return
	}
	if t.swsCtx != nil {
		C.sws_freeContext(t.swsCtx)
	}
	t.width, t.height = width, height
	t.swsCtx = C.sws_getContext(
		C.int(width), C.int(height), C.AV_PIX_FMT_YUV420P,
		C.int(width), C.int(height), C.AV_PIX_FMT_RGBA,
		C.SWS_BILINEAR, nil, nil, nil)
	t.rgba = image.NewRGBA(image.Rect(0, 0, width, height))
}

// Transform implements theoraclip.PixelTransform.
func (t *Transform) Transform(planes theoraclip.PlaneSet) (any, error) {
	t.ensureContext(planes.Y.Width, planes.Y.Height)
	if t.swsCtx == nil {
		return nil, fmt.Errorf("ebitenvideo: sws_getContext failed for %dx%d", planes.Y.Width, planes.Y.Height)
	}

	srcData := [3]*C.uint8_t{
		(*C.uint8_t)(unsafe.Pointer(&planes.Y.Data[0])),
		(*C.uint8_t)(unsafe.Pointer(&planes.Cb.Data[0])),
		(*C.uint8_t)(unsafe.Pointer(&planes.Cr.Data[0])),
	}
	srcStride := [3]C.int{C.int(planes.Y.Stride), C.int(planes.Cb.Stride), C.int(planes.Cr.Stride)}

	dstData := [1]*C.uint8_t{(*C.uint8_t)(unsafe.Pointer(&t.rgba.Pix[0]))}
	dstStride := [1]C.int{C.int(t.rgba.Stride)}

	C.sws_scale(t.swsCtx,
		(**C.uint8_t)(unsafe.Pointer(&srcData[0])), (*C.int)(unsafe.Pointer(&srcStride[0])),
		0, C.int(planes.Y.Height),
		(**C.uint8_t)(unsafe.Pointer(&dstData[0])), (*C.int)(unsafe.Pointer(&dstStride[0])))

	// sws_scale writes into t.rgba.Pix in place; hand back a defensive copy
	// so the caller can hold onto this frame while the next Transform call
	// reuses the same backing buffer.
	out := image.NewRGBA(t.rgba.Bounds())
	copy(out.Pix, t.rgba.Pix)
	return out, nil
}

// Close releases the cached sws context.
func (t *Transform) Close() {
	if t.swsCtx != nil {
		C.sws_freeContext(t.swsCtx)
		t.swsCtx = nil
	}
}

// Sprite wraps an ebiten.Image that a host ticks frames into, with an
// optional debug HUD drawn the same way the original player's
// drawTextOverlay did: a semi-transparent strip with basicfont text.
type Sprite struct {
	Image      *ebiten.Image
	width      int
	height     int
	hudText    string
	showHUD    bool
}

// NewSprite allocates a Sprite of the given dimensions.
func NewSprite(width, height int) (*Sprite, error) {
	img, err := ebiten.NewImage(width, height, ebiten.FilterDefault)
	if err != nil {
		return nil, err
	}
	return &Sprite{Image: img, width: width, height: height}, nil
}

// SetHUDText sets the overlay text drawn by Update; an empty string
// disables the HUD.
func (s *Sprite) SetHUDText(text string) {
	s.hudText = text
	s.showHUD = text != ""
}

// Update replaces the sprite's pixels with frame, drawing the HUD overlay
// on top if one is set.
func (s *Sprite) Update(frame *image.RGBA) {
	if s.showHUD {
		drawTextOverlay(frame, s.hudText)
	}
	s.Image.ReplacePixels(frame.Pix)
}

// drawTextOverlay draws a semi-transparent strip with text across the
// bottom of img, the same layout as the original player example.
func drawTextOverlay(img *image.RGBA, text string) {
	bounds := img.Bounds()
	const barHeight = 30
	barRect := image.Rect(0, bounds.Max.Y-barHeight, bounds.Max.X, bounds.Max.Y)
	draw.Draw(img, barRect, &image.Uniform{color.RGBA{0, 0, 0, 180}}, image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{255, 255, 255, 255}),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(10), Y: fixed.I(bounds.Max.Y - 10)},
	}
	d.DrawString(text)
}
