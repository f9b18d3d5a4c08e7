package anim

import (
	"image"
	"image/color"
	"image/gif"
	"testing"
	"time"
)

// palettedFrame builds a single-color frame covering the given rect.
func palettedFrame(rect image.Rectangle, c color.Color) *image.Paletted {
	p := image.NewPaletted(rect, color.Palette{color.Transparent, c})
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			p.SetColorIndex(x, y, 1)
		}
	}
	return p
}

func testGIF() *gif.GIF {
	full := image.Rect(0, 0, 4, 4)
	corner := image.Rect(2, 2, 4, 4)
	return &gif.GIF{
		Image: []*image.Paletted{
			palettedFrame(full, color.RGBA{R: 255, A: 255}),
			palettedFrame(corner, color.RGBA{G: 255, A: 255}),
			palettedFrame(corner, color.RGBA{B: 255, A: 255}),
		},
		Delay:     []int{10, 0, 5},
		Disposal:  []byte{gif.DisposalNone, gif.DisposalNone, gif.DisposalNone},
		LoopCount: 0,
		Config:    image.Config{Width: 4, Height: 4},
	}
}

func TestGIFProvider_FrameCount(t *testing.T) {
	p, err := NewGIFProvider(testGIF())
	if err != nil {
		t.Fatalf("NewGIFProvider() error: %v", err)
	}
	if p.FrameCount() != 3 {
		t.Errorf("FrameCount() = %d, want 3", p.FrameCount())
	}
}

func TestGIFProvider_LoopCount(t *testing.T) {
	tests := []struct {
		name string
		gif  int
		want int
	}{
		{"forever", 0, 0},
		{"play once", -1, 1},
		{"restart twice", 2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGIF()
			g.LoopCount = tt.gif
			p, err := NewGIFProvider(g)
			if err != nil {
				t.Fatalf("NewGIFProvider() error: %v", err)
			}
			if p.LoopCount() != tt.want {
				t.Errorf("LoopCount() = %d, want %d", p.LoopCount(), tt.want)
			}
		})
	}
}

func TestGIFProvider_FrameDuration(t *testing.T) {
	p, err := NewGIFProvider(testGIF())
	if err != nil {
		t.Fatalf("NewGIFProvider() error: %v", err)
	}

	if d := p.FrameDuration(0); d != 100*time.Millisecond {
		t.Errorf("FrameDuration(0) = %v, want 100ms", d)
	}
	// Zero delay falls back to the conventional 100ms.
	if d := p.FrameDuration(1); d != fallbackGIFDelay {
		t.Errorf("FrameDuration(1) = %v, want fallback %v", d, fallbackGIFDelay)
	}
	if d := p.FrameDuration(2); d != 50*time.Millisecond {
		t.Errorf("FrameDuration(2) = %v, want 50ms", d)
	}
	// Out of range uses the fallback too.
	if d := p.FrameDuration(99); d != fallbackGIFDelay {
		t.Errorf("FrameDuration(99) = %v, want fallback %v", d, fallbackGIFDelay)
	}
}

func TestGIFProvider_Poster(t *testing.T) {
	p, err := NewGIFProvider(testGIF())
	if err != nil {
		t.Fatalf("NewGIFProvider() error: %v", err)
	}

	poster := p.Poster()
	if poster == nil {
		t.Fatal("Poster() returned nil")
	}
	if poster.Height() != 4 {
		t.Errorf("poster Height() = %d, want 4", poster.Height())
	}
}

func TestGIFProvider_DecodeFrame_Composites(t *testing.T) {
	p, err := NewGIFProvider(testGIF())
	if err != nil {
		t.Fatalf("NewGIFProvider() error: %v", err)
	}

	// Frame 1 only paints the bottom-right corner; the composed result
	// must still carry frame 0's red pixels elsewhere.
	f := p.DecodeFrame(1)
	if f == nil {
		t.Fatal("DecodeFrame(1) returned nil")
	}
	img := f.(*ImageFrame).Image()

	r, _, _, _ := img.At(0, 0).RGBA()
	if r == 0 {
		t.Error("pixel (0,0) lost frame 0's red after compositing frame 1")
	}
	_, g, _, _ := img.At(3, 3).RGBA()
	if g == 0 {
		t.Error("pixel (3,3) should be green from frame 1")
	}
}

func TestGIFProvider_DecodeFrame_BackwardJump(t *testing.T) {
	p, err := NewGIFProvider(testGIF())
	if err != nil {
		t.Fatalf("NewGIFProvider() error: %v", err)
	}

	_ = p.DecodeFrame(2)

	// Going back to frame 0 recomposes from scratch: no green residue.
	f := p.DecodeFrame(0)
	img := f.(*ImageFrame).Image()
	_, g, _, _ := img.At(3, 3).RGBA()
	r, _, _, _ := img.At(3, 3).RGBA()
	if g != 0 || r == 0 {
		t.Errorf("frame 0 after backward jump: got (r=%d g=%d), want pure red", r, g)
	}
}

func TestGIFProvider_DecodeFrame_OutOfRange(t *testing.T) {
	p, err := NewGIFProvider(testGIF())
	if err != nil {
		t.Fatalf("NewGIFProvider() error: %v", err)
	}
	if f := p.DecodeFrame(3); f != nil {
		t.Error("DecodeFrame(3) should return nil for out-of-range index")
	}
	if f := p.DecodeFrame(-1); f != nil {
		t.Error("DecodeFrame(-1) should return nil")
	}
}

func TestNewGIFProvider_Empty(t *testing.T) {
	if _, err := NewGIFProvider(&gif.GIF{}); err == nil {
		t.Error("NewGIFProvider() with no frames should error")
	}
}
