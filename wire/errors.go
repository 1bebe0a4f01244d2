package wire

import "errors"

// Sentinel error kinds surfaced by the frame codec and command model. Each
// is wrapped with context via fmt.Errorf("%w: ...", ...) at the call site;
// callers compare with errors.Is against these values.
var (
	// ErrFraming covers a missing prefix, a frame not terminated by CR LF
	// where the declared length says it should be, or a non-numeric length.
	ErrFraming = errors.New("meitrack: frame parse error: framing")
	// ErrOverSize is returned when declared_length exceeds MaxDeclaredLength.
	ErrOverSize = errors.New("meitrack: frame parse error: declared length over size")
	// ErrFieldCount is returned when a payload carries more fields than its
	// command schema declares.
	ErrFieldCount = errors.New("meitrack: command parse error: field count")
	// ErrBadCommand names the unknown-command-type error kind. No function
	// in this module returns it: command.Parse falls back to an untyped
	// Command for a command_type the table does not model.
	ErrBadCommand = errors.New("meitrack: command parse error: unknown command type")
	// ErrChecksum is returned by a Strict decoder when the computed checksum
	// disagrees with the one carried on the wire.
	ErrChecksum = errors.New("meitrack: checksum mismatch")
)
