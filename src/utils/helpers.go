package utils

import (
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"tixgate/src/config"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/yeqown/go-qrcode"
)

// NewTicketCode returns the opaque code used as the QR payload and external
// lookup key.
func NewTicketCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NormalizePhone strips separators and keeps a single leading plus.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for i, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			continue
		}
		if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// VerifyURL is the QR payload: a URL carrying the ticket code as an opaque
// token.
func VerifyURL(code string) string {
	return fmt.Sprintf("%s/verify?code=%s", config.PublicURL(), code)
}

// SessionSlug derives a stable human-readable identifier for a session.
func SessionSlug(day time.Time, startsAt time.Time) string {
	return slug.Make(fmt.Sprintf("%s-%s", day.Format(config.DAY_PARSE_FORMAT), startsAt.Format("15-04")))
}

// RenderTicketQR writes the QR image for a ticket code to the temp dir and
// returns the file path.
func RenderTicketQR(code string) (string, error) {
	qrc, err := qrcode.New(VerifyURL(code))
	if err != nil {
		return "", err
	}
	tempdir := os.Getenv("TEMP_DIR")
	if tempdir == "" {
		tempdir = os.TempDir()
	}
	filepath := path.Join(tempdir, fmt.Sprintf("ticketcode_%s.jpeg", code))
	if err := qrc.Save(filepath); err != nil {
		return "", err
	}
	return filepath, nil
}
