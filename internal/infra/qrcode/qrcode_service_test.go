package qrcode

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQRCodeService(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"absolute url", "https://quizdash.example.com", false},
		{"trailing slash", "https://quizdash.example.com/", false},
		{"relative url", "/streak", true},
		{"empty url", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewQRCodeService(tt.baseURL, 256, "M")
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, svc)

				return
			}
			require.NoError(t, err)
			assert.NotNil(t, svc)
		})
	}
}

func TestRecoveryLevel(t *testing.T) {
	assert.Equal(t, qrcode.Low, recoveryLevel("L"))
	assert.Equal(t, qrcode.Medium, recoveryLevel("M"))
	assert.Equal(t, qrcode.High, recoveryLevel("q"))
	assert.Equal(t, qrcode.Highest, recoveryLevel("H"))
	assert.Equal(t, qrcode.Medium, recoveryLevel("invalid"))
}

func TestQRCodeService_ShareURL(t *testing.T) {
	svc, err := NewQRCodeService("https://quizdash.example.com/", 256, "M")
	require.NoError(t, err)

	got := svc.(*qrcodeService).ShareURL("uid 1", 14)
	assert.Equal(t, "https://quizdash.example.com/streak/uid%201?days=14", got)
}

func TestQRCodeService_GenerateStreakShareQR(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"Small QR", 128},
		{"Medium QR", 256},
		{"Default size", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewQRCodeService("https://quizdash.example.com", tt.size, "M")
			require.NoError(t, err)

			qrBytes, err := svc.GenerateStreakShareQR("uid-1", 7)
			require.NoError(t, err)

			img, err := png.Decode(bytes.NewReader(qrBytes))
			require.NoError(t, err)

			want := tt.size
			if want == 0 {
				want = defaultSize
			}
			assert.Equal(t, want, img.Bounds().Dx())
		})
	}
}

func TestQRCodeService_GenerateStreakShareQR_EmptyUID(t *testing.T) {
	svc, err := NewQRCodeService("https://quizdash.example.com", 256, "M")
	require.NoError(t, err)

	_, err = svc.GenerateStreakShareQR("", 3)
	assert.Error(t, err)
}
