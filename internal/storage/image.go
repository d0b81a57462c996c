package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

var (
	ErrTooLarge     = errors.New("file too large")
	ErrInvalidImage = errors.New("invalid image")
	ErrUnsupported  = errors.New("unsupported file type")
)

type ImageOptions struct {
	MaxDim      int
	JPEGQuality int
	// Transparent pixels are composited onto this colour.
	Background color.RGBA
}

func DefaultImageOptions() ImageOptions {
	return ImageOptions{
		MaxDim:      1920,
		JPEGQuality: 85,
		Background:  color.RGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

func decodeImage(data []byte, contentType string) (image.Image, error) {
	r := bytes.NewReader(data)
	switch contentType {
	case "image/jpeg":
		return jpeg.Decode(r)
	case "image/png":
		return png.Decode(r)
	case "image/webp":
		return webp.Decode(r)
	}
	return nil, ErrUnsupported
}

// fitWithin scales (w, h) down to fit a maxDim square, keeping the aspect
// ratio. It never upscales.
func fitWithin(w, h, maxDim int) (int, int) {
	if w <= maxDim && h <= maxDim {
		return w, h
	}
	var tw, th int
	if w >= h {
		tw, th = maxDim, int(float64(h)*float64(maxDim)/float64(w))
	} else {
		tw, th = int(float64(w)*float64(maxDim)/float64(h)), maxDim
	}
	return max(tw, 1), max(th, 1)
}

// NormalizeImage decodes a JPEG, PNG or WebP image, bounds its dimensions and
// re-encodes it as an opaque JPEG. Re-encoding also strips embedded metadata.
func NormalizeImage(data []byte, contentType string, opts ImageOptions) ([]byte, error) {
	if opts.MaxDim <= 0 {
		opts.MaxDim = 1920
	}
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = 85
	}

	src, err := decodeImage(data, contentType)
	if err != nil {
		if errors.Is(err, ErrUnsupported) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	bounds := src.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, ErrInvalidImage
	}

	tw, th := fitWithin(bounds.Dx(), bounds.Dy(), opts.MaxDim)
	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: opts.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return out.Bytes(), nil
}
