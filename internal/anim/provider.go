// Package anim defines the frame and provider contracts the playback
// engine consumes, plus concrete providers (GIF) and a test mock.
package anim

import (
	"image"
	"time"
)

// Frame is one decoded still image of an animated sequence. It is
// immutable once produced; the engine only needs its storage footprint
// to size the frame buffer.
type Frame interface {
	// RowBytes returns the byte length of one pixel row.
	RowBytes() int
	// Height returns the frame height in pixels.
	Height() int
}

// Provider exposes a decoded animated image. DecodeFrame may block for
// an arbitrary duration; the engine never calls it from the tick path.
type Provider interface {
	// FrameCount returns the total number of frames. Playback requires
	// at least 2.
	FrameCount() int
	// LoopCount returns the number of loops to play, 0 meaning forever.
	LoopCount() int
	// FrameDuration returns the display duration of the given frame.
	FrameDuration(index int) time.Duration
	// DecodeFrame synchronously decodes the frame at index. It returns
	// nil if the frame cannot be produced.
	DecodeFrame(index int) Frame
}

// PosterProvider is a Provider whose container doubles as a single
// static image. The poster is published synchronously when playback
// starts at frame 0 before any frame has been decoded.
//
// The capability is resolved once at construction, never re-checked
// mid-playback.
type PosterProvider interface {
	Provider
	// Poster returns the representative still frame, or nil.
	Poster() Frame
}

// ImageFrame wraps a decoded *image.RGBA as a Frame.
type ImageFrame struct {
	img *image.RGBA
}

// NewImageFrame creates a Frame backed by img.
func NewImageFrame(img *image.RGBA) *ImageFrame {
	return &ImageFrame{img: img}
}

// Image returns the underlying decoded image.
func (f *ImageFrame) Image() image.Image { return f.img }

// RowBytes returns the stride of the backing pixel buffer.
func (f *ImageFrame) RowBytes() int { return f.img.Stride }

// Height returns the frame height in pixels.
func (f *ImageFrame) Height() int { return f.img.Rect.Dy() }

// Verify ImageFrame implements Frame at compile time.
var _ Frame = (*ImageFrame)(nil)
