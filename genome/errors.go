package genome

import "github.com/pkg/errors"

// Errors (§7). Stable sentinel kinds, wrapped with github.com/pkg/errors
// for context, mirroring lib2x3/catalog/catalog.go's errors.Wrap(go2x3.Err...)
// convention.
var (
	ErrInvalidInput        = errors.New("genome: invalid input")
	ErrUnstableNet         = errors.New("genome: net is unstable")
	ErrNotThreeDimensional = errors.New("genome: edges do not span three dimensions")
	ErrInternal            = errors.New("genome: internal invariant violated")
)

// ExitCode maps err to the CLI exit codes of §6: 0 success, 1 genome
// unknown, 2 unhandled exception, 3 internal error, 4 invalid input,
// 5 parse error. nil maps to 0; unrecognised errors map to 2.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	cause := errors.Cause(err)
	switch cause {
	case ErrUnknownGenome:
		return 1
	case ErrInternal:
		return 3
	case ErrInvalidInput, ErrUnstableNet, ErrNotThreeDimensional:
		return 4
	case ErrParse:
		return 5
	default:
		return 2
	}
}

// ErrUnknownGenome signals a successfully computed genome with no archive
// match (scenario 4 of §8): the pipeline reports "UNKNOWN" and exits 1.
var ErrUnknownGenome = errors.New("genome: topology not present in archive")

// ErrParse signals a malformed genome string (§6.2 codec).
var ErrParse = errors.New("genome: malformed genome string")
