package whatsapp

import (
	"errors"
	"fmt"
	"strings"
)

const host = "https://wa.me/"

var ErrNoContactNumber = errors.New("please configure your WhatsApp number first")

// Digits strips everything but 0-9 from a phone number.
func Digits(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SendLink builds a deep link that opens a chat with number prefilled with message.
func SendLink(number, message string) (string, error) {
	digits := Digits(number)
	if digits == "" {
		return "", ErrNoContactNumber
	}
	return host + digits + "?text=" + encode(message), nil
}

// ShareLink builds a deep link that lets the user pick the recipient.
func ShareLink(message string) string {
	return host + "?text=" + encode(message)
}

// encode percent-encodes every byte except A-Z a-z 0-9 and -_.!~*'(), the set browsers
// leave alone in encodeURIComponent. Spaces become %20.
func encode(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

// StudentIDMessage is sent to hand a student their generated code.
func StudentIDMessage(code, name string) string {
	return fmt.Sprintf("Hello! Your unique student ID is: %s\n\nStudent Name: %s\n\nPlease keep this ID safe for future reference.", code, name)
}

// StudentDetailsMessage is the public search share text.
func StudentDetailsMessage(code, name, batch, status string) string {
	return fmt.Sprintf("Student Details:\nID: %s\nName: %s\nBatch: %s\nStatus: %s", code, name, orNA(batch), orNA(status))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
