package common

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestErrorClasses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		class  error
		others []error
	}{
		{"fetch", &FetchError{URL: "http://x", Status: 404}, ErrFetch, []error{ErrParse, ErrAudioLoad, ErrNotFound}},
		{"parse", &ParseError{Source: "summary.json", Err: io.ErrUnexpectedEOF}, ErrParse, []error{ErrFetch, ErrAudioLoad, ErrNotFound}},
		{"audio", &AudioLoadError{URL: "a.mp3", Err: io.EOF}, ErrAudioLoad, []error{ErrFetch, ErrParse, ErrNotFound}},
		{"notfound", &NotFoundError{What: "language", Key: "xx"}, ErrNotFound, []error{ErrFetch, ErrParse, ErrAudioLoad}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			if !errors.Is(wrapped, tt.class) {
				t.Errorf("errors.Is(%v, %v) = false", wrapped, tt.class)
			}
			for _, o := range tt.others {
				if errors.Is(wrapped, o) {
					t.Errorf("errors.Is(%v, %v) = true", wrapped, o)
				}
			}
		})
	}
}

func TestFetchError_Message(t *testing.T) {
	tests := []struct {
		err  *FetchError
		want string
	}{
		{&FetchError{URL: "u", Status: 500}, "fetch u: status 500"},
		{&FetchError{URL: "u", Err: io.EOF}, "fetch u: EOF"},
		{&FetchError{URL: "u", Status: 404, Err: io.EOF}, "fetch u: status 404: EOF"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseError_Unwrap(t *testing.T) {
	err := fmt.Errorf("load: %w", &ParseError{Source: "s", Err: io.ErrUnexpectedEOF})
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("cause is not reachable through ParseError")
	}
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Source != "s" {
		t.Errorf("errors.As failed: %v", pe)
	}
}
