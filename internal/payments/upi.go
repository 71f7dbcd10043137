// Package payments builds display-only UPI payment links and QR codes.
// There is no payment verification; an admin approves or rejects the
// booking after checking the transfer manually.
package payments

import (
	"fmt"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"
)

// Details describes one payment request.
type Details struct {
	Amount      int
	Currency    string
	Description string
}

// Generator builds UPI deep links for a fixed payee.
type Generator struct {
	upiAddress string // virtual payment address, e.g. "example@upi"
	payeeName  string
}

func NewGenerator(upiAddress, payeeName string) *Generator {
	return &Generator{upiAddress: upiAddress, payeeName: payeeName}
}

// Link returns a upi://pay deep link for the given details. Mobile
// clients open it directly; desktop clients render it as a QR code.
func (g *Generator) Link(d Details) string {
	currency := d.Currency
	if currency == "" {
		currency = "INR"
	}
	return fmt.Sprintf("upi://pay?pa=%s&pn=%s&am=%d&cu=%s&tn=%s",
		url.QueryEscape(g.upiAddress),
		url.QueryEscape(g.payeeName),
		d.Amount,
		url.QueryEscape(currency),
		url.QueryEscape(d.Description),
	)
}

// QRCode renders the payment link as a PNG of the given size.
func (g *Generator) QRCode(d Details, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(g.Link(d), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode payment qr: %w", err)
	}
	return png, nil
}
