package service

// QRCodeService defines the interface for QR code generation
type QRCodeService interface {
	// GenerateStreakShareQR renders a PNG QR code linking to the user's shared streak page
	GenerateStreakShareQR(uid string, days int) ([]byte, error)
}
