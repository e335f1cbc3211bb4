package theoraclip

import "github.com/pkg/errors"

// ErrorKind identifies one of the error conditions spec'd for header
// bootstrap, seeking, and duration probing.
type ErrorKind int

const (
	// ErrKindTruncatedHeaders means the byte source was exhausted before the
	// video stream absorbed its three codec header packets. Fatal to Load.
	ErrKindTruncatedHeaders ErrorKind = iota
	// ErrKindInvalidVideoHeader means a parsed video header was rejected by
	// the decoder. Fatal to Load.
	ErrKindInvalidVideoHeader
	// ErrKindInvalidAudioHeader means a parsed audio header was rejected.
	// Non-fatal: the candidate audio stream is dropped.
	ErrKindInvalidAudioHeader
	// ErrKindSeekFailed means a fine-seek round exhausted the stream.
	ErrKindSeekFailed
	// ErrKindUnknownDuration means the duration probe found no granule
	// within its scan window. Non-fatal.
	ErrKindUnknownDuration
	// ErrKindDecodeHole means packet extraction returned "out of sync" past
	// the retry budget.
	ErrKindDecodeHole
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindTruncatedHeaders:
		return "truncated headers"
	case ErrKindInvalidVideoHeader:
		return "invalid video header"
	case ErrKindInvalidAudioHeader:
		return "invalid audio header"
	case ErrKindSeekFailed:
		return "seek failed"
	case ErrKindUnknownDuration:
		return "unknown duration"
	case ErrKindDecodeHole:
		return "decode hole"
	default:
		return "unknown error"
	}
}

// clipError pairs an ErrorKind with the pkg/errors-wrapped context that
// produced it, so callers can errors.Cause() down to the sentinel below
// while still seeing a human-readable chain via Error().
type clipError struct {
	kind ErrorKind
	err  error
}

func (e *clipError) Error() string { return e.err.Error() }
func (e *clipError) Cause() error  { return e.kind.sentinel() }
func (e *clipError) Unwrap() error { return e.kind.sentinel() }

func (k ErrorKind) sentinel() error {
	switch k {
	case ErrKindTruncatedHeaders:
		return ErrTruncatedHeaders
	case ErrKindInvalidVideoHeader:
		return ErrInvalidVideoHeader
	case ErrKindInvalidAudioHeader:
		return ErrInvalidAudioHeader
	case ErrKindSeekFailed:
		return ErrSeekFailed
	case ErrKindUnknownDuration:
		return ErrUnknownDuration
	case ErrKindDecodeHole:
		return ErrDecodeHole
	default:
		return errors.New(k.String())
	}
}

// Sentinel errors for each ErrorKind. Compare with errors.Is.
var (
	ErrTruncatedHeaders   = errors.New("theoraclip: truncated headers")
	ErrInvalidVideoHeader = errors.New("theoraclip: invalid video header")
	ErrInvalidAudioHeader = errors.New("theoraclip: invalid audio header")
	ErrSeekFailed         = errors.New("theoraclip: seek failed")
	ErrUnknownDuration    = errors.New("theoraclip: unknown duration")
	ErrDecodeHole         = errors.New("theoraclip: decode hole")
)

// wrapErr annotates err with kind and a message. err's text stays in
// Error(); Cause and Unwrap lead to kind's sentinel, not to err.
func wrapErr(kind ErrorKind, err error, message string) error {
	if err == nil {
		err = kind.sentinel()
	}
	return &clipError{kind: kind, err: errors.Wrap(err, message)}
}

// newErr builds a clipError from a message alone (no underlying cause).
func newErr(kind ErrorKind, message string) error {
	return &clipError{kind: kind, err: errors.New(message)}
}
