/*
Package assert holds the assertions shared by the ledger core tests.
Program tests use testify. Errors are compared by their registered root
error, so a wrapped error matches the kind it was created from.
*/
package assert

import (
	"bytes"
	"reflect"

	"github.com/iov-one/quorum/errors"
)

// Tester is the part of testing.TB the assertions need.
type Tester interface {
	Helper()
	Fatalf(string, ...interface{})
}

// Nil fails the test if given value is not nil. A typed nil pointer held
// by an interface counts as nil.
func Nil(t Tester, value interface{}) {
	t.Helper()
	if !isNil(value) {
		// %+v prints the stack trace of a wrapped error.
		t.Fatalf("want a nil value, got %+v", value)
	}
}

func isNil(value interface{}) (isnil bool) {
	if value == nil {
		return true
	}
	defer func() {
		if recover() != nil {
			isnil = false
		}
	}()
	return reflect.ValueOf(value).IsNil()
}

// Equal fails the test if two values are not deeply equal.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("values not equal\nwant %T %v\n got %T %v", want, want, got, got)
	}
}

// IsErr fails the test unless got is, or wraps, the want root error. A nil
// want only matches a nil error.
func IsErr(t Tester, want *errors.Error, got error) {
	t.Helper()
	if want.Is(got) {
		return
	}
	if want == nil {
		t.Fatalf("want no error, got code %d: %+v", errors.Code(got), got)
		return
	}
	if got == nil {
		t.Fatalf("want %q error (code %d), got none", want, want.Code())
		return
	}
	t.Fatalf("want %q error (code %d), got code %d: %+v", want, want.Code(), errors.Code(got), got)
}

// Data fails the test if the account data differs, reporting the first
// offset that does not match.
func Data(t Tester, want, got []byte) {
	t.Helper()
	if bytes.Equal(want, got) {
		return
	}
	n := len(want)
	if len(got) < n {
		n = len(got)
	}
	at := n
	for i := 0; i < n; i++ {
		if want[i] != got[i] {
			at = i
			break
		}
	}
	t.Fatalf("data differs at offset %d\nwant %d bytes %x\n got %d bytes %x", at, len(want), want, len(got), got)
}
