package engines

import (
	"context"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// ZXingQRDecoder decodes QR payloads using the pure-Go ZXing port.
type ZXingQRDecoder struct {
	reader gozxing.Reader
}

// NewZXingQRDecoder creates the default QR decoder
func NewZXingQRDecoder() *ZXingQRDecoder {
	return &ZXingQRDecoder{reader: qrcode.NewQRCodeReader()}
}

// Decode returns the decoded payloads, or nil when no code is present.
// Decode failures mean no code, never an analysis error.
func (d *ZXingQRDecoder) Decode(ctx context.Context, img image.Image) ([]string, error) {
	if img == nil {
		return nil, nil
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, nil
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	result, err := d.reader.Decode(bmp, hints)
	if err != nil || result == nil {
		return nil, nil
	}

	text := result.GetText()
	if text == "" {
		return nil, nil
	}
	return []string{text}, nil
}
