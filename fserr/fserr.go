// Package fserr defines the error taxonomy shared by every component of the
// FAT32 volume engine.
//
// The shape follows the teacher's DriverError design (a message-carrying
// error value with WithMessage/Wrap constructors and Unwrap support) but is
// keyed on a small closed set of volume-engine failure kinds rather than
// syscall.Errno, since this engine has no POSIX process underneath it.
package fserr

import "fmt"

// Kind identifies which of the nine error categories an *Error belongs to.
type Kind int

const (
	// BadBpb means the boot parameter block is invalid or describes a
	// geometry this core does not support.
	BadBpb Kind = iota
	// OutOfRange means a cluster number fell outside the valid cluster range.
	OutOfRange
	// CorruptChain means a FAT entry classified Bad/Reserved mid-chain, the
	// chain exceeded its traversal cap, or it ended before a file's declared
	// size was satisfied.
	CorruptChain
	// NotFound means a path segment does not exist.
	NotFound
	// NotADirectory means a non-final path segment was a file, or an
	// operation required a directory and didn't get one.
	NotADirectory
	// NotAFile means an operation required a regular file (e.g. read) and
	// got a directory instead.
	NotAFile
	// InvalidPath means a path or short name was malformed.
	InvalidPath
	// NoSpace means there weren't enough free clusters to satisfy an
	// allocation.
	NoSpace
	// DirFull means a parent directory's clusters hold no free 32-byte slot
	// and this core does not extend directories.
	DirFull
)

func (k Kind) String() string {
	switch k {
	case BadBpb:
		return "BadBpb"
	case OutOfRange:
		return "OutOfRange"
	case CorruptChain:
		return "CorruptChain"
	case NotFound:
		return "NotFound"
	case NotADirectory:
		return "NotADirectory"
	case NotAFile:
		return "NotAFile"
	case InvalidPath:
		return "InvalidPath"
	case NoSpace:
		return "NoSpace"
	case DirFull:
		return "DirFull"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by every fallible operation in
// this module.
type Error struct {
	Kind    Kind
	message string
	wrapped error
}

// New creates an *Error of the given kind with a custom message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, message: message}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error of the given kind that carries an underlying cause.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, message: message, wrapped: cause}
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.message, e.wrapped.Error())
	}
	if e.message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.message)
	}
	return e.Kind.String()
}

// Unwrap lets errors.Is/errors.As see through to the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.wrapped
}

// Is reports whether target is an *Error of the same Kind. This lets callers
// write errors.Is(err, fserr.New(fserr.NotFound, "")) style checks, but the
// package-level Is function below is the intended entry point.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// Is reports whether err is an *Error of the given kind, unwrapping as
// needed.
func Is(err error, kind Kind) bool {
	var fe *Error
	for err != nil {
		if asErr, ok := err.(*Error); ok {
			fe = asErr
			break
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return fe != nil && fe.Kind == kind
}
