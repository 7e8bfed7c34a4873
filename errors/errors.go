package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Generic root errors.
var (
	// ErrInternal is used for errors that do not wrap any registered root
	// error. Code 1 is reserved for it.
	ErrInternal = Register(1, "internal")

	// ErrUnauthorized is used whenever a request without sufficient
	// authorization is handled.
	ErrUnauthorized = Register(2, "unauthorized")

	// ErrNotFound is used when a requested operation cannot be completed
	// due to missing data.
	ErrNotFound = Register(3, "not found")

	// ErrInput stands for general input problems indication.
	ErrInput = Register(4, "invalid input")

	// ErrDuplicate is returned when a unique value is registered twice.
	ErrDuplicate = Register(6, "duplicate")

	// ErrState is returned when an object is in invalid state for the
	// requested operation.
	ErrState = Register(10, "invalid state")

	// ErrInsufficientAmount is returned when an account does not hold
	// enough lamports.
	ErrInsufficientAmount = Register(12, "insufficient amount")

	// ErrDatabase is returned when the storage backend fails.
	ErrDatabase = Register(17, "database")

	// ErrIteratorDone is returned by an iterator that has no more values.
	ErrIteratorDone = Register(18, "iterator done")
)

// Engine root errors.
var (
	// ErrAddressMismatch is returned when a supplied account does not
	// equal the address it is required to have.
	ErrAddressMismatch = Register(20, "address mismatch")

	// ErrAlreadyInitialized is returned when an entity that can be
	// initialized only once is initialized again.
	ErrAlreadyInitialized = Register(21, "already initialized")

	// ErrInvalidThreshold is returned for a roster size or threshold out
	// of the supported range.
	ErrInvalidThreshold = Register(22, "invalid threshold")

	// ErrIncorrectOwner is returned when an account is not owned by the
	// program operating on it.
	ErrIncorrectOwner = Register(23, "incorrect owner")

	// ErrMissingSignature is returned when a quorum is not met or when an
	// account required to sign did not.
	ErrMissingSignature = Register(24, "missing required signature")

	// ErrCorruptData is returned when persisted bytes cannot be decoded.
	ErrCorruptData = Register(25, "corrupt data")

	// ErrAlreadyExecuted is returned when an executed proposal is
	// executed again.
	ErrAlreadyExecuted = Register(26, "already executed")

	// ErrUninitialized is returned when an operation requires an
	// initialized entity.
	ErrUninitialized = Register(27, "uninitialized")

	// ErrNotEnoughAccounts is returned when an instruction is given fewer
	// accounts than it requires.
	ErrNotEnoughAccounts = Register(28, "not enough account keys")
)

// Host ledger root errors.
var (
	// ErrAccountInUse is returned when allocating an account that already
	// holds lamports or data.
	ErrAccountInUse = Register(40, "account already in use")

	// ErrPrivilegeEscalation is returned when a nested invocation asks for
	// a signer or writable privilege the caller does not have.
	ErrPrivilegeEscalation = Register(41, "privilege escalation")

	// ErrExternalModification is returned when a program modifies an
	// account it is not allowed to modify.
	ErrExternalModification = Register(42, "external account modification")

	// ErrUnknownProgram is returned when an instruction targets a program
	// that is not deployed.
	ErrUnknownProgram = Register(43, "unknown program")

	// ErrCallDepth is returned when nested invocations go too deep.
	ErrCallDepth = Register(44, "call depth exceeded")
)

// ErrPanic is only set when we recover from a panic, so we know to redact
// potentially sensitive system info.
var ErrPanic = Register(111222, "panic")

// Register returns an error instance that should be used as the base for
// creating error instances during runtime.
//
// This function ensures that no error code is used twice. Attempt to reuse
// an error code results in panic. Use it only during a program startup
// phase.
func Register(code uint32, description string) *Error {
	if e, ok := usedCodes[code]; ok {
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, e.desc))
	}
	err := &Error{
		code: code,
		desc: description,
	}
	usedCodes[err.code] = err
	return err
}

// usedCodes is keeping track of used codes to ensure their uniqueness.
var usedCodes = map[uint32]*Error{}

// Error represents a root error.
//
// Each instance created during the runtime should wrap one of the declared
// root errors. This allows error tests and returning all errors to the
// client in a safe manner.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// Code returns the numeric code of this root error.
func (e Error) Code() uint32 {
	return e.code
}

// Is check if given error instance is of a given kind. This involves
// unwrapping given error using the Cause method if available.
func (kind *Error) Is(err error) bool {
	// Reflect usage is necessary to correctly compare with
	// a nil implementation of an error.
	if kind == nil {
		if err == nil {
			return true
		}
		return reflect.ValueOf(err).IsNil()
	}

	for {
		if err == kind {
			return true
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return false
		}
	}
}

// Wrap extends given error with an additional information.
//
// If err is nil, this returns nil, avoiding the need for an if statement when
// wrapping a error returned at the end of a function.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}

	// Attach a stack trace only once, at the innermost wrap.
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}

	return &wrappedError{
		parent: err,
		msg:    description,
	}
}

// Wrapf extends given error with an additional information.
func Wrapf(err error, format string, args ...interface{}) error {
	desc := fmt.Sprintf(format, args...)
	return Wrap(err, desc)
}

type wrappedError struct {
	// This error layer description.
	msg string
	// The underlying error that triggered this one.
	parent error
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %s", e.msg, e.parent.Error())
}

func (e *wrappedError) Cause() error {
	return e.parent
}

func (e *wrappedError) Unwrap() error {
	return e.parent
}

// Format prints the full stack trace for %+v and the message otherwise.
func (e *wrappedError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s", e.Error())
		if st := stackTrace(e); st != nil {
			fmt.Fprintf(s, "%+v", st)
		}
		return
	}
	fmt.Fprint(s, e.Error())
}

// Code returns the code of the root error of given error. Errors that do not
// wrap any registered root error are reported as ErrInternal.
func Code(err error) uint32 {
	if err == nil {
		return 0
	}
	if root, ok := errors.Cause(err).(*Error); ok {
		return root.code
	}
	return ErrInternal.code
}

// Recover captures a panic and stop its propagation. If panic happens it is
// transformed into a ErrPanic instance and assigned to given error. Call this
// function using defer in order to work as expected.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// causer is an interface implemented by an error that supports wrapping.
type causer interface {
	Cause() error
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// stackTrace returns the first found stack trace frame carried by given
// error or any wrapped error. It returns nil if no stack trace is found.
func stackTrace(err error) errors.StackTrace {
	for {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return nil
		}
	}
}
