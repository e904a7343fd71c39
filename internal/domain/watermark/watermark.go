// Package watermark flags thumbnails that probably carry overlaid text.
//
// The check is OCR based and only a hint: any thumbnail with visible text
// (titles, baked-in captions) is a false positive, and purely graphical
// logos with no recognizable glyphs are false negatives.
package watermark

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"strings"

	"github.com/rs/zerolog"

	"github.com/forPelevin/viralcut/internal/ports"
	"github.com/forPelevin/viralcut/internal/types"
)

type Detector struct {
	ocr    ports.OCR
	images ports.ImageSource
	logger zerolog.Logger
}

func New(logger zerolog.Logger, ocr ports.OCR, images ports.ImageSource) *Detector {
	return &Detector{
		ocr:    ocr,
		images: images,
		logger: logger.With().Str("component", "watermark").Logger(),
	}
}

// LooksWatermarked reports whether OCR finds any non-blank text in img.
// Failures never propagate: they are logged and the verdict is false.
func (d *Detector) LooksWatermarked(ctx context.Context, img image.Image) bool {
	ok, err := d.check(ctx, img)
	if err != nil {
		d.logger.Warn().Err(err).Msg("watermark check failed, assuming no watermark")
		return false
	}
	return ok
}

// LooksWatermarkedRef loads ref through the image source first.
func (d *Detector) LooksWatermarkedRef(ctx context.Context, ref string) bool {
	if d.images == nil {
		d.logger.Warn().Str("ref", ref).Msg("no image source configured")
		return false
	}
	img, err := d.images.Load(ctx, ref)
	if err != nil {
		d.logger.Warn().
			Err(fmt.Errorf("%w: load %q: %v", types.ErrHeuristicFailure, ref, err)).
			Msg("watermark check failed, assuming no watermark")
		return false
	}
	verdict := d.LooksWatermarked(ctx, img)
	d.logger.Debug().Str("ref", ref).Bool("watermarked", verdict).Msg("thumbnail checked")
	return verdict
}

func (d *Detector) check(ctx context.Context, img image.Image) (bool, error) {
	if img == nil || img.Bounds().Empty() {
		return false, fmt.Errorf("%w: empty image", types.ErrHeuristicFailure)
	}
	if d.ocr == nil {
		return false, fmt.Errorf("%w: recognizer unavailable", types.ErrHeuristicFailure)
	}
	text, err := d.ocr.Recognize(ctx, Luminance(img))
	if err != nil {
		return false, fmt.Errorf("%w: ocr: %v", types.ErrHeuristicFailure, err)
	}
	return strings.TrimSpace(text) != "", nil
}

// Luminance converts img to 8-bit grayscale using the color.GrayModel weights.
func Luminance(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}
