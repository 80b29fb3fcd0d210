// Package errwrap prefixes errors with the name of the function that
// produced them.
package errwrap

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Wrap annotates err with msg and the calling function, e.g.
// "main.run: error starting catalog: <err>". A nil err yields a new error
// carrying only the annotated message.
func Wrap(err error, msg string) error {
	withCaller := fmt.Sprintf("%s: %s", caller(), msg)
	if err == nil {
		return errors.New(withCaller)
	}
	return fmt.Errorf("%s: %w", withCaller, err)
}

// Root returns the innermost error of a wrapped chain.
func Root(err error) error {
	if err == nil {
		return nil
	}
	for {
		u := errors.Unwrap(err)
		if u == nil {
			return err
		}
		err = u
	}
}

func caller() string {
	pc := make([]uintptr, 1)
	if runtime.Callers(3, pc) == 0 {
		return "unknown"
	}
	frame, _ := runtime.CallersFrames(pc).Next()
	// keep only the last path element, e.g. "main.run"
	chunks := strings.Split(frame.Function, "/")
	return chunks[len(chunks)-1]
}
