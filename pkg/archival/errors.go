package archival

import (
	"errors"
	"fmt"
)

// Kind names the check a capture failed.
type Kind int

const (
	InvalidURLFormat Kind = iota + 1
	UnparsableDate
	NotLastSaturday
	BrandNotAccepted
)

var (
	ErrInvalidURLFormat = errors.New("archival URL does not match the web.archive.org snapshot pattern")
	ErrUnparsableDate   = errors.New("archival timestamp is not a valid calendar date")
	ErrNotLastSaturday  = errors.New("capture date is not the last Saturday of its month")
	ErrBrandNotAccepted = errors.New("brand is not in the accepted brand set")
)

func (k Kind) String() string {
	switch k {
	case InvalidURLFormat:
		return "invalid_url_format"
	case UnparsableDate:
		return "unparsable_date"
	case NotLastSaturday:
		return "not_last_saturday"
	case BrandNotAccepted:
		return "brand_not_accepted"
	default:
		return "unknown"
	}
}

// Message is the text shown to the contributor.
func (k Kind) Message() string {
	switch k {
	case InvalidURLFormat:
		return "O link deve ser um snapshot do Wayback Machine (https://web.archive.org/web/AAAAMMDDhhmmss/...)"
	case UnparsableDate:
		return "A data do snapshot é inválida"
	case NotLastSaturday:
		return "O snapshot deve ser do último sábado do mês"
	case BrandNotAccepted:
		return "Marca não aprovada para envios com snapshot"
	default:
		return "Falha na validação do snapshot"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case InvalidURLFormat:
		return ErrInvalidURLFormat
	case UnparsableDate:
		return ErrUnparsableDate
	case NotLastSaturday:
		return ErrNotLastSaturday
	case BrandNotAccepted:
		return ErrBrandNotAccepted
	}
	return nil
}

// CaptureError is returned by Validate. It matches its kind's sentinel under
// errors.Is and unwraps to the underlying parse error, if any.
type CaptureError struct {
	Kind  Kind
	URL   string
	Brand string
	// Date is set once the timestamp has been parsed.
	Date Date
	Err  error
}

func (e *CaptureError) Error() string {
	msg := e.Kind.sentinel()
	if msg == nil {
		msg = errors.New("archival capture rejected")
	}
	switch e.Kind {
	case UnparsableDate:
		if e.Err != nil {
			return fmt.Sprintf("%v: %v", msg, e.Err)
		}
	case NotLastSaturday:
		return fmt.Sprintf("%v: %s (last Saturday is %s)", msg, e.Date, LastSaturday(e.Date.Year, e.Date.Month))
	case BrandNotAccepted:
		return fmt.Sprintf("%v: %q", msg, e.Brand)
	}
	return msg.Error()
}

func (e *CaptureError) Unwrap() error { return e.Err }

func (e *CaptureError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the failure kind carried by err, or 0 if err is not a
// capture failure.
func KindOf(err error) Kind {
	var ce *CaptureError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}
