package errors

import (
	stdlib "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestCause(t *testing.T) {
	std := stdlib.New("this is a stdlib error")

	cases := map[string]struct {
		err  error
		root error
	}{
		"Errors are self-causing": {
			err:  ErrNotFound,
			root: ErrNotFound,
		},
		"Wrap reveals root cause": {
			err:  Wrap(ErrNotFound, "foo"),
			root: ErrNotFound,
		},
		"Cause works for stderr as root": {
			err:  Wrap(std, "Some helpful text"),
			root: std,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := errors.Cause(tc.err); got != tc.root {
				t.Fatal("unexpected result")
			}
		})
	}
}

func TestErrorIs(t *testing.T) {
	cases := map[string]struct {
		a      *Error
		b      error
		wantIs bool
	}{
		"instance of the same error": {
			a:      ErrNotFound,
			b:      ErrNotFound,
			wantIs: true,
		},
		"two different coded errors": {
			a:      ErrNotFound,
			b:      ErrModel,
			wantIs: false,
		},
		"successful comparison to a wrapped error": {
			a:      ErrNotFound,
			b:      Wrap(ErrNotFound, "gone"),
			wantIs: true,
		},
		"deeply wrapped error": {
			a:      ErrUnauthorized,
			b:      Wrap(Wrapf(ErrUnauthorized, "signer %d", 1), "refund"),
			wantIs: true,
		},
		"unsuccessful comparison to a wrapped error": {
			a:      ErrUnauthorized,
			b:      Wrap(ErrNotFound, "gone"),
			wantIs: false,
		},
		"not equal to stdlib error": {
			a:      ErrNotFound,
			b:      fmt.Errorf("stdlib error"),
			wantIs: false,
		},
		"nil is nil": {
			a:      nil,
			b:      nil,
			wantIs: true,
		},
		"nil is any error nil": {
			a:      nil,
			b:      (*wrappedError)(nil),
			wantIs: true,
		},
		"nil is not not-nil": {
			a:      nil,
			b:      ErrUnauthorized,
			wantIs: false,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := tc.a.Is(tc.b); got != tc.wantIs {
				t.Fatalf("unexpected result - got:%v want: %v", got, tc.wantIs)
			}
		})
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, "nothing"); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
	if err := Wrapf(nil, "nothing %d", 1); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
}

func TestWrapMessage(t *testing.T) {
	err := Wrapf(ErrInsufficientAmount, "balance %d", 5)
	if got, want := err.Error(), "balance 5: insufficient amount"; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic")
		}
	}()
	Register(ErrNotFound.code, "again")
}

func TestRecover(t *testing.T) {
	fn := func() (err error) {
		defer Recover(&err)
		panic("boom")
	}
	err := fn()
	if !ErrPanic.Is(err) {
		t.Fatalf("want panic error, got %+v", err)
	}
}

func TestStackTraceIsPrinted(t *testing.T) {
	err := Wrap(ErrState, "closed")
	full := fmt.Sprintf("%+v", err)
	if !strings.Contains(full, "errors_test.go") {
		t.Fatalf("stack trace missing in %q", full)
	}
	if short := fmt.Sprintf("%v", err); short != "closed: invalid state" {
		t.Fatalf("unexpected short form %q", short)
	}
}
