package kinds

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"sync"

	errs "github.com/matzehuels/noisegraph/pkg/errors"
	"github.com/matzehuels/noisegraph/pkg/graph"
)

const maxRenderSize = 4096

// Render rasterizes a 2D field into a grayscale image on a worker goroutine.
//
// Recompute hands the current field to a worker and reports
// [graph.ErrPending] until the image for that revision is ready. A newer
// revision cancels the worker in flight; a result for an older revision is
// discarded, so the published image always matches the latest inputs.
type Render struct {
	in            sources[Sampler2D]
	width, height int

	mu     sync.Mutex
	want   uint64 // revision being rendered
	cancel context.CancelFunc
	img    *image.Gray
	imgRev uint64
}

// NewRender returns a render kind producing 64x64 images.
func NewRender() *Render {
	return &Render{in: make(sources[Sampler2D]), width: 64, height: 64}
}

func (*Render) Kind() string { return "render" }

func (*Render) Layout() graph.Layout {
	return graph.Layout{
		Inputs:  []graph.PinSpec{pin("field", TypeNoise2D)},
		Outputs: []graph.PinSpec{pin("image", TypeImage)},
	}
}

func (k *Render) OnSourceAttached(a graph.Attachment, commit bool) error {
	return k.in.attach(k.Kind(), "2D field", a, commit)
}

func (k *Render) OnSourceDetached(a graph.Attachment) { k.in.detach(a) }

func (k *Render) SetParam(name string, v any) error {
	if name != "width" && name != "height" {
		return unknownParam(k.Kind(), name)
	}
	n, err := positiveInt(name, v, maxRenderSize)
	if err != nil {
		return err
	}
	if name == "width" {
		k.width = n
	} else {
		k.height = n
	}
	return nil
}

func (k *Render) Params() map[string]any {
	return map[string]any{"width": k.width, "height": k.height}
}

func (k *Render) Recompute(_ context.Context, rev uint64) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.img != nil && k.imgRev == rev {
		return nil
	}
	if k.cancel != nil && k.want == rev {
		return graph.ErrPending
	}

	f, err := field2D(k.in, k.Kind(), 0)
	if err != nil {
		return err
	}
	if k.cancel != nil {
		k.cancel()
	}
	// The worker outlives the tick that started it, so it does not inherit
	// the tick's context.
	ctx, cancel := context.WithCancel(context.Background())
	k.want, k.cancel = rev, cancel
	go k.work(ctx, rev, f, k.width, k.height)
	return graph.ErrPending
}

func (k *Render) work(ctx context.Context, rev uint64, f Field2D, w, h int) {
	img := rasterize(ctx, f, w, h)

	k.mu.Lock()
	defer k.mu.Unlock()
	// Superseded or closed while rendering.
	if img == nil || k.want != rev || k.cancel == nil {
		return
	}
	k.img, k.imgRev = img, rev
	k.cancel()
	k.cancel = nil
}

// Image returns the latest finished image and the revision it was rendered
// for, or nil before the first render completes. The image must not be
// modified.
func (k *Render) Image() (*image.Gray, uint64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.img, k.imgRev
}

// Busy reports whether a render is in flight.
func (k *Render) Busy() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.cancel != nil
}

// EncodePNG writes the latest finished image as PNG.
func (k *Render) EncodePNG(w io.Writer) error {
	img, _ := k.Image()
	if img == nil {
		return errs.New(errs.ErrCodeInvalidInput, "render has no image yet")
	}
	return png.Encode(w, img)
}

// Close cancels a render in flight.
func (k *Render) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.cancel != nil {
		k.cancel()
		k.cancel = nil
	}
	return nil
}

// rasterize samples f at pixel centers over the unit square. It returns nil
// if ctx is cancelled first.
func rasterize(ctx context.Context, f Field2D, w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		if ctx.Err() != nil {
			return nil
		}
		v := (float64(y) + 0.5) / float64(h)
		for x := range w {
			u := (float64(x) + 0.5) / float64(w)
			img.SetGray(x, y, color.Gray{Y: toGray(f(u, v))})
		}
	}
	return img
}

// toGray maps [-1, 1] onto [0, 255], clamping outliers.
func toGray(v float64) uint8 {
	t := (v + 1) / 2
	t = math.Max(0, math.Min(1, t))
	return uint8(math.Round(t * 255))
}
