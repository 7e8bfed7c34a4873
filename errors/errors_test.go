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
			b:      ErrCorruptData,
			wantIs: false,
		},
		"successful comparison to a wrapped error": {
			a:      ErrAddressMismatch,
			b:      Wrap(Wrap(ErrAddressMismatch, "registry"), "allocate"),
			wantIs: true,
		},
		"unsuccessful comparison to a wrapped error": {
			a:      ErrMissingSignature,
			b:      Wrap(ErrIncorrectOwner, "proposal"),
			wantIs: false,
		},
		"not equal to stdlib error": {
			a:      ErrInput,
			b:      fmt.Errorf("stdlib error"),
			wantIs: false,
		},
		"nil is nil": {
			a:      nil,
			b:      nil,
			wantIs: true,
		},
		"nil is not an error": {
			a:      nil,
			b:      ErrInput,
			wantIs: false,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := tc.a.Is(tc.b); got != tc.wantIs {
				t.Fatalf("unexpected result - got:%v wanted:%v", got, tc.wantIs)
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
	err := Wrapf(ErrInvalidThreshold, "threshold %d", 12)
	if got, want := err.Error(), "threshold 12: invalid threshold"; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestCode(t *testing.T) {
	cases := map[string]struct {
		err  error
		want uint32
	}{
		"nil":             {err: nil, want: 0},
		"root":            {err: ErrCorruptData, want: 25},
		"wrapped":         {err: Wrap(ErrAlreadyExecuted, "proposal"), want: 26},
		"stdlib":          {err: stdlib.New("boom"), want: 1},
		"wrapped stdlib":  {err: Wrap(stdlib.New("boom"), "ctx"), want: 1},
		"double wrapping": {err: Wrap(Wrap(ErrAccountInUse, "a"), "b"), want: 40},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := Code(tc.err); got != tc.want {
				t.Fatalf("want %d, got %d", tc.want, got)
			}
		})
	}
}

func TestStdlibCompatibility(t *testing.T) {
	err := Wrap(ErrUninitialized, "registry")
	if !stdlib.Is(err, ErrUninitialized) {
		t.Fatal("stdlib errors.Is must see the root error")
	}
}

func TestRecover(t *testing.T) {
	run := func() (err error) {
		defer Recover(&err)
		panic("oh no")
	}
	err := run()
	if !ErrPanic.Is(err) {
		t.Fatalf("want panic error, got %v", err)
	}
	if !strings.Contains(err.Error(), "oh no") {
		t.Fatalf("panic value must be kept, got %q", err)
	}
}

func TestStackTrace(t *testing.T) {
	err := Wrap(ErrDuplicate, "name")
	full := fmt.Sprintf("%+v", err)
	if !strings.HasPrefix(full, "name: duplicate") {
		t.Fatalf("unexpected message: %s", full)
	}
	if !strings.Contains(full, "errors_test.go") {
		t.Fatalf("stack trace must point at the creation place: %s", full)
	}
	if short := fmt.Sprintf("%v", err); short != "name: duplicate" {
		t.Fatalf("unexpected short form: %s", short)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("panic expected")
		}
	}()
	Register(ErrNotFound.Code(), "again")
}
