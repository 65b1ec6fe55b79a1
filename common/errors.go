package common

import (
	"errors"
	"fmt"
)

// Error classes. Every typed error below matches exactly one of them with
// errors.Is.
var (
	ErrFetch     = errors.New("fetch failed")
	ErrParse     = errors.New("parse failed")
	ErrAudioLoad = errors.New("audio load failed")
	ErrNotFound  = errors.New("not found")
)

// FetchError is a network, file or HTTP status failure. Status is 0 when no
// response was received.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	default:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
}

func (e *FetchError) Unwrap() error        { return e.Err }
func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// ParseError reports malformed archive, JSON or markup. Source names the
// document (URL or archive entry).
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error        { return e.Err }
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// AudioLoadError is reported when a playback backend cannot open or decode media.
type AudioLoadError struct {
	URL string
	Err error
}

func (e *AudioLoadError) Error() string {
	return fmt.Sprintf("load audio %s: %v", e.URL, e.Err)
}

func (e *AudioLoadError) Unwrap() error        { return e.Err }
func (e *AudioLoadError) Is(target error) bool { return target == ErrAudioLoad }

// NotFoundError reports an expected catalog entry, timing table or language
// which is absent.
type NotFoundError struct {
	What string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.What, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
