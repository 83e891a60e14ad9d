// Package refnum mints and normalizes certificate reference numbers.
//
// Public codes look like BIS-20250301-AB12CD: a UTC date partition and a
// six character suffix drawn from [A-Z0-9]. Backfilled rows use the
// millisecond timestamp instead of the date.
package refnum

import (
	"crypto/rand"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
)

const (
	Prefix    = "BIS"
	SuffixLen = 6
	alphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// largest multiple of len(alphabet) that fits in a byte; bytes above it are rejected
	rejectAbove = 256 - 256%len(alphabet)
)

var publicPattern = regexp.MustCompile(`^BIS-\d{8}-[A-Z0-9]{6}$`)

// Generator produces reference numbers. The zero value is not usable; call New.
type Generator struct {
	rand io.Reader
	now  func() time.Time
}

func New() *Generator {
	return &Generator{rand: rand.Reader, now: time.Now}
}

// NewWith allows tests to fix the clock and the entropy source.
func NewWith(r io.Reader, now func() time.Time) *Generator {
	return &Generator{rand: r, now: now}
}

func (g *Generator) suffix() (string, error) {
	out := make([]byte, 0, SuffixLen)
	buf := make([]byte, SuffixLen*2)
	for len(out) < SuffixLen {
		if _, err := io.ReadFull(g.rand, buf); err != nil {
			return "", fmt.Errorf("read entropy: %w", err)
		}
		for _, b := range buf {
			if int(b) >= rejectAbove {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == SuffixLen {
				break
			}
		}
	}
	return string(out), nil
}

// Public returns BIS-YYYYMMDD-XXXXXX.
func (g *Generator) Public() (string, error) {
	s, err := g.suffix()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%s", Prefix, g.now().UTC().Format("20060102"), s), nil
}

// Backfill returns BIS-<unix millis>-XXXXXX for rows created before numbering existed.
func (g *Generator) Backfill() (string, error) {
	s, err := g.suffix()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%s", Prefix, g.now().UnixMilli(), s), nil
}

// Normalize trims surrounding whitespace. Case is preserved; lookups compare case-insensitively.
func Normalize(s string) string { return strings.TrimSpace(s) }

// IsPublic reports whether s is a well-formed public code.
func IsPublic(s string) bool { return publicPattern.MatchString(s) }
