package anim

import (
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"os"
	"sync"
	"time"
)

// Delays of 0 (or absurdly short values) are rendered at a conventional
// fallback, matching what browsers do for broken encoders.
const (
	minGIFDelay      = 20 * time.Millisecond
	fallbackGIFDelay = 100 * time.Millisecond
)

// GIFProvider adapts a decoded GIF container to the Provider contract.
//
// GIF frames are stored as deltas over a logical canvas, so producing
// the displayable image for frame i requires compositing frames 0..i
// with their disposal methods applied. The provider keeps the canvas of
// the last composed frame and composes incrementally; a backward jump
// recomposes from frame 0. Compositing is the expensive part of
// DecodeFrame, which is why the engine runs it off the tick path.
type GIFProvider struct {
	mu sync.Mutex

	g      *gif.GIF
	bounds image.Rectangle

	canvas   *image.RGBA // state after frame `composed` was drawn and disposed
	composed int         // index of the last frame drawn onto canvas, -1 initially

	poster Frame
}

// OpenGIF decodes the GIF at path and returns a provider over it.
func OpenGIF(path string) (*GIFProvider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := gif.DecodeAll(f)
	if err != nil {
		return nil, fmt.Errorf("decode gif: %w", err)
	}
	return NewGIFProvider(g)
}

// NewGIFProvider wraps an already decoded GIF.
func NewGIFProvider(g *gif.GIF) (*GIFProvider, error) {
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("gif has no frames")
	}

	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		bounds = g.Image[0].Bounds()
	}

	p := &GIFProvider{
		g:        g,
		bounds:   bounds,
		composed: -1,
	}
	p.canvas = image.NewRGBA(bounds)

	// The first composed frame doubles as the container's static image.
	p.poster = p.DecodeFrame(0)

	return p, nil
}

// FrameCount returns the number of frames in the container.
func (p *GIFProvider) FrameCount() int { return len(p.g.Image) }

// LoopCount maps the GIF loop extension onto the engine's convention
// (0 = forever). A GIF LoopCount of -1 means play once; n > 0 means
// restart n times, i.e. n+1 traversals.
func (p *GIFProvider) LoopCount() int {
	switch {
	case p.g.LoopCount == 0:
		return 0
	case p.g.LoopCount < 0:
		return 1
	default:
		return p.g.LoopCount + 1
	}
}

// FrameDuration returns the delay of the given frame. GIF delays are in
// hundredths of a second.
func (p *GIFProvider) FrameDuration(index int) time.Duration {
	if index < 0 || index >= len(p.g.Delay) {
		return fallbackGIFDelay
	}
	d := time.Duration(p.g.Delay[index]) * 10 * time.Millisecond
	if d < minGIFDelay {
		return fallbackGIFDelay
	}
	return d
}

// Poster returns the composed first frame.
func (p *GIFProvider) Poster() Frame { return p.poster }

// DecodeFrame composites and returns the frame at index, or nil if the
// index is out of range.
func (p *GIFProvider) DecodeFrame(index int) Frame {
	if index < 0 || index >= len(p.g.Image) {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Backward jumps restart composition from scratch.
	if index <= p.composed {
		p.canvas = image.NewRGBA(p.bounds)
		p.composed = -1
	}

	var out *image.RGBA
	for i := p.composed + 1; i <= index; i++ {
		out = p.composeNext(i)
	}
	return NewImageFrame(out)
}

// composeNext draws frame i onto the canvas, snapshots the result, then
// applies frame i's disposal so the canvas is ready for frame i+1.
// Caller holds p.mu.
func (p *GIFProvider) composeNext(i int) *image.RGBA {
	src := p.g.Image[i]

	var saved *image.RGBA
	if p.disposal(i) == gif.DisposalPrevious {
		saved = image.NewRGBA(p.bounds)
		draw.Draw(saved, p.bounds, p.canvas, p.bounds.Min, draw.Src)
	}

	draw.Draw(p.canvas, src.Bounds(), src, src.Bounds().Min, draw.Over)

	snapshot := image.NewRGBA(p.bounds)
	draw.Draw(snapshot, p.bounds, p.canvas, p.bounds.Min, draw.Src)

	switch p.disposal(i) {
	case gif.DisposalBackground:
		draw.Draw(p.canvas, src.Bounds(), image.Transparent, image.Point{}, draw.Src)
	case gif.DisposalPrevious:
		p.canvas = saved
	}

	p.composed = i
	return snapshot
}

func (p *GIFProvider) disposal(i int) byte {
	if i < 0 || i >= len(p.g.Disposal) {
		return gif.DisposalNone
	}
	return p.g.Disposal[i]
}

// Verify GIFProvider implements PosterProvider at compile time.
var _ PosterProvider = (*GIFProvider)(nil)
