package domain

import "strings"

// IsValidBarcode decides whether a scanned string is a plausible product
// barcode, as opposed to a QR payload or other unrelated code. Standard
// product barcodes (EAN-8/UPC-A/EAN-13/ITF-14) are all-digit strings of 8
// to 14 characters. Long strings and strings carrying URL-ish characters
// are assumed to be QR content.
func IsValidBarcode(code string) bool {
	if len(code) < 8 {
		return false
	}
	if isAllDigits(code) && len(code) <= 14 {
		return true
	}
	if len(code) > 20 || strings.ContainsAny(code, "./=") {
		return false
	}
	return true
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
