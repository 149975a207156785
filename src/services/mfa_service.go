package services

import (
	"bytes"
	"encoding/base64"
	"image/png"

	"github.com/pquerna/otp/totp"
)

type MFAService struct{}

func NewMFAService() *MFAService {
	return &MFAService{}
}

// GenerateMFASecret creates a new secret and returns the QR code and secret.
func (s *MFAService) GenerateMFASecret(username string) (secret string, qrCodeBase64 string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "TradeLens",
		AccountName: username,
	})
	if err != nil {
		return "", "", err
	}

	// PNG then Base64 so the frontend can render the QR code inline.
	var buf bytes.Buffer
	img, err := key.Image(200, 200)
	if err != nil {
		return "", "", err
	}

	err = png.Encode(&buf, img)
	if err != nil {
		return "", "", err
	}

	qrCodeBase64 = base64.StdEncoding.EncodeToString(buf.Bytes())
	return key.Secret(), qrCodeBase64, nil
}

func (s *MFAService) ValidateToken(secret string, token string) bool {
	return totp.Validate(token, secret)
}
