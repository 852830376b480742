package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/tiff"
)

// EncodeTIFF converts a page raster to grayscale TIFF bytes, the format
// Tesseract consumes most reliably. It is available whether or not OCR
// support is compiled in, so rasters can be prepared and stored ahead of
// recognition.
func EncodeTIFF(img image.Image) ([]byte, error) {
	gray := image.NewGray(img.Bounds())
	draw.Draw(gray, gray.Bounds(), img, img.Bounds().Min, draw.Src)

	var buf bytes.Buffer
	opts := &tiff.Options{Compression: tiff.Deflate}
	if err := tiff.Encode(&buf, gray, opts); err != nil {
		return nil, fmt.Errorf("tiff encode: %w", err)
	}
	return buf.Bytes(), nil
}
