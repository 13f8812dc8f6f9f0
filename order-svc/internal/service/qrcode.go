package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

type QRGenerator interface {
	Encode(content string) ([]byte, error)
}

type DefaultQRGenerator struct {
	Size int
}

func (g DefaultQRGenerator) Encode(content string) ([]byte, error) {
	size := g.Size
	if size == 0 {
		size = 256
	}
	return qrcode.Encode(content, qrcode.Medium, size)
}

// Links builds the customer-facing URLs encoded in QR codes.
type Links struct {
	Scheme string
	Base   string
}

func (l Links) Restaurant(subdomain string) string {
	return fmt.Sprintf("%s://%s.%s", l.Scheme, subdomain, l.Base)
}

func (l Links) Table(subdomain string, token uuid.UUID) string {
	return fmt.Sprintf("%s://%s.%s/t/%s", l.Scheme, subdomain, l.Base, token)
}
