package ocr

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/tiff"
)

// testRaster draws a black block on a white background.
func testRaster(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}
	for x := 10; x < 50 && x < width; x++ {
		for y := 10; y < 30 && y < height; y++ {
			img.Set(x, y, color.Black)
		}
	}
	return img
}

func TestEncodeTIFF(t *testing.T) {
	data, err := EncodeTIFF(testRaster(100, 50))
	if err != nil {
		t.Fatalf("EncodeTIFF failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty TIFF data")
	}

	decoded, err := tiff.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("encoded TIFF does not decode: %v", err)
	}
	bounds := decoded.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 50 {
		t.Errorf("decoded bounds %v, expected 100x50", bounds)
	}

	// Grayscale conversion keeps the dark block dark and the background light.
	gray := color.GrayModel.Convert(decoded.At(20, 20)).(color.Gray)
	if gray.Y > 0x20 {
		t.Errorf("expected dark pixel at (20,20), got %d", gray.Y)
	}
	gray = color.GrayModel.Convert(decoded.At(90, 40)).(color.Gray)
	if gray.Y < 0xe0 {
		t.Errorf("expected light pixel at (90,40), got %d", gray.Y)
	}
}
