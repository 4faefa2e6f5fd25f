// Package archival checks archival-snapshot evidence attached to price submissions.
//
// A capture is accepted when its URL is a web.archive.org snapshot, the embedded
// timestamp is a real calendar date, that date is the last Saturday of its month,
// and the submitted brand is on the accepted list. Checks run in that order and
// the first failure is reported.
package archival

import (
	"fmt"
	"regexp"
	"time"
)

var captureURLPattern = regexp.MustCompile(`^https?://web\.archive\.org/web/(\d{14})/`)

// BrandSet is the membership test the validator consults.
type BrandSet interface {
	Contains(brand string) bool
}

// Validator holds the accepted brands. It keeps no other state and is safe
// for concurrent use.
type Validator struct {
	brands BrandSet
}

func NewValidator(brands BrandSet) *Validator {
	return &Validator{brands: brands}
}

// Validate returns the capture date of url, or a *CaptureError describing the
// first check that failed.
func (v *Validator) Validate(url, brand string) (Date, error) {
	m := captureURLPattern.FindStringSubmatch(url)
	if m == nil {
		return Date{}, &CaptureError{Kind: InvalidURLFormat, URL: url, Brand: brand}
	}

	date, err := ParseTimestamp(m[1])
	if err != nil {
		return Date{}, &CaptureError{Kind: UnparsableDate, URL: url, Brand: brand, Err: err}
	}

	if !IsLastSaturday(date) {
		return Date{}, &CaptureError{Kind: NotLastSaturday, URL: url, Brand: brand, Date: date}
	}

	if v.brands == nil || !v.brands.Contains(brand) {
		return Date{}, &CaptureError{Kind: BrandNotAccepted, URL: url, Brand: brand, Date: date}
	}

	return date, nil
}

// Timestamp extracts the raw 14-digit segment of a capture URL.
func Timestamp(url string) (string, bool) {
	m := captureURLPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// CaptureURL builds the snapshot URL for pageURL at noon of d. Noon keeps the
// timestamp on the same calendar day whatever the archive's rounding.
func CaptureURL(d Date, pageURL string) string {
	t := time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC)
	return fmt.Sprintf("https://web.archive.org/web/%s/%s", t.Format("20060102150405"), pageURL)
}
