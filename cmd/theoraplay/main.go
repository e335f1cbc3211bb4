// Command theoraplay plays an Ogg/Theora(+Vorbis) clip in an ebiten window,
// the same role the original reisen example player filled for FFmpeg
// containers.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten"

	"github.com/zimwip/theoraclip"
	"github.com/zimwip/theoraclip/adapters/beepaudio"
	"github.com/zimwip/theoraclip/adapters/ebitenvideo"
)

var languageFlag = flag.String("lang", "", "preferred audio language tag (e.g. en-US)")
var noAutoRestartFlag = flag.Bool("no-loop", false, "disable automatic restart at end of file")
var hudFlag = flag.Bool("hud", false, "show a debug HUD overlay")

// fileSource adapts an *os.File to theoraclip.DataSource.
type fileSource struct {
	f *os.File
}

func (s *fileSource) Read(buf []byte) (int, error)   { return s.f.Read(buf) }
func (s *fileSource) SeekAbs(offset int64) error     { _, err := s.f.Seek(offset, 0); return err }
func (s *fileSource) Size() (int64, bool) {
	info, err := s.f.Stat()
	if err != nil {
		return 0, false
	}
	return info.Size(), true
}

// Game drives one Clip's playback inside an ebiten window.
type Game struct {
	clip       *theoraclip.Clip
	transform  *ebitenvideo.Transform
	sprite     *ebitenvideo.Sprite
	ticker     <-chan time.Time
	perSecond  <-chan time.Time
	fps        int
	framesShown int
	hud        bool
}

func (g *Game) Start(path string, opts theoraclip.Options) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}

	opts.PixelTransform = g.transform
	clip, err := theoraclip.Open(&fileSource{f: f}, opts)
	if err != nil {
		f.Close()
		return err
	}
	g.clip = clip

	_, _, w, h := clip.PictureRect()
	g.sprite, err = ebitenvideo.NewSprite(w, h)
	if err != nil {
		return err
	}
	if g.hud {
		g.sprite.SetHUDText(fmt.Sprintf("%dx%d", w, h))
	}

	num, den := clip.FrameRate()
	spf := float64(den) / float64(num)
	g.ticker = time.Tick(time.Duration(spf * float64(time.Second)))
	g.perSecond = time.Tick(time.Second)

	return nil
}

func (g *Game) Update(screen *ebiten.Image) error {
	select {
	case <-g.ticker:
		ok, err := g.clip.DecodeNextFrame()
		if err != nil {
			return err
		}
		if ok {
			g.framesShown++
			g.fps++
		}
	default:
	}

	if err := screen.DrawImage(g.sprite.Image, &ebiten.DrawImageOptions{}); err != nil {
		return err
	}

	select {
	case <-g.perSecond:
		ebiten.SetWindowTitle(fmt.Sprintf("theoraplay | fps: %d | frames: %d | dropped: %d",
			g.fps, g.framesShown, g.clip.DroppedFramesCount()))
		g.fps = 0
	default:
	}

	return nil
}

func (g *Game) Layout(_, _ int) (int, int) {
	_, _, w, h := g.clip.PictureRect()
	return w, h
}

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: theoraplay [flags] <file.ogv>")
		os.Exit(2)
	}

	transform := ebitenvideo.New()
	game := &Game{transform: transform, hud: *hudFlag}

	opts := theoraclip.Options{
		OutputMode:               theoraclip.OutputModeTransform,
		AudioLanguagePreference:  *languageFlag,
		AudioSinkFactory:         beepaudio.New(),
	}

	if err := game.Start(args[0], opts); err != nil {
		panic(err)
	}
	game.clip.SetAutoRestart(!*noAutoRestartFlag)

	_, _, w, h := game.clip.PictureRect()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("theoraplay")
	if err := ebiten.RunGame(game); err != nil {
		panic(err)
	}
}
