// Package qrcode encodes join URLs into scannable PNG images and decodes
// uploaded QR images back into their text. Camera capture loops stay on the
// client; only whole images cross this boundary.
package qrcode

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	qr "github.com/skip2/go-qrcode"
)

// Size bounds for generated images, in pixels.
const (
	MinSize     = 64
	MaxSize     = 1024
	DefaultSize = 256
)

// ClampSize normalizes a requested pixel size into the supported range.
// Zero or negative requests fall back to the default.
func ClampSize(size int) int {
	if size <= 0 {
		return DefaultSize
	}
	if size < MinSize {
		return MinSize
	}
	if size > MaxSize {
		return MaxSize
	}
	return size
}

// Encode renders content as a two-tone PNG QR image of size x size pixels
// with the library's fixed quiet-zone margin.
func Encode(content string, size int) ([]byte, error) {
	q, err := qr.New(content, qr.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to build qr code: %w", err)
	}
	q.ForegroundColor = color.Black
	q.BackgroundColor = color.White
	png, err := q.PNG(ClampSize(size))
	if err != nil {
		return nil, fmt.Errorf("failed to render qr png: %w", err)
	}
	return png, nil
}

// Decode extracts the encoded text from a PNG or JPEG image containing a QR
// code. It returns an error when the image is unreadable or contains no
// decodable code.
func Decode(imageData []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("failed to binarize image: %w", err)
	}
	result, err := zxqr.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", fmt.Errorf("no decodable qr code found: %w", err)
	}
	return result.GetText(), nil
}
