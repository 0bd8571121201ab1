package lib

import (
	"bytes"

	"github.com/yeqown/go-qrcode"
)

// QRCode renders content as a JPEG QR code.
func QRCode(content string) ([]byte, error) {
	qrc, err := qrcode.New(content)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := qrc.SaveTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
