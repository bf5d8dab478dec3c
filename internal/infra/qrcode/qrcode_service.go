package qrcode

import (
	"net/url"
	"strconv"
	"strings"

	"quizdash/config"
	"quizdash/internal/domain/service"
	"quizdash/internal/errors"

	"github.com/skip2/go-qrcode"
)

const defaultSize = 256

type qrcodeService struct {
	baseURL              string
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// NewQRCodeService creates a new QR code service instance
func NewQRCodeService(baseURL string, size int, errorCorrectionLevel string) (service.QRCodeService, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, errors.Errorf("share base url %q must be absolute", baseURL)
	}

	if size <= 0 {
		size = defaultSize
	}

	return &qrcodeService{
		baseURL:              strings.TrimRight(baseURL, "/"),
		size:                 size,
		errorCorrectionLevel: recoveryLevel(errorCorrectionLevel),
	}, nil
}

// NewFromConfig builds the share QR service from the share section.
func NewFromConfig(cfg *config.Config) (service.QRCodeService, error) {
	if cfg.Share == nil {
		return nil, errors.New("share configuration is required")
	}

	return NewQRCodeService(cfg.Share.BaseURL, cfg.Share.Size, cfg.Share.ErrorCorrectionLevel)
}

// GenerateStreakShareQR renders a PNG QR code pointing at the user's streak page
func (s *qrcodeService) GenerateStreakShareQR(uid string, days int) ([]byte, error) {
	if uid == "" {
		return nil, errors.New("uid is required")
	}

	qrCode, err := qrcode.New(s.ShareURL(uid, days), s.errorCorrectionLevel)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create QR code")
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate PNG")
	}

	return pngBytes, nil
}

// ShareURL builds the link encoded in the QR code.
func (s *qrcodeService) ShareURL(uid string, days int) string {
	query := url.Values{}
	query.Set("days", strconv.Itoa(days))

	return s.baseURL + "/streak/" + url.PathEscape(uid) + "?" + query.Encode()
}

func recoveryLevel(level string) qrcode.RecoveryLevel {
	switch strings.ToUpper(level) {
	case "L":
		return qrcode.Low
	case "Q":
		return qrcode.High
	case "H":
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}
