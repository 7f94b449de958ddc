package ico

import "fmt"

// A FormatError reports that the input is not a valid ICO or CUR file.
type FormatError string

func (e FormatError) Error() string { return "ico: invalid format: " + string(e) }

// An InvalidEntryError reports an entry that cannot be stored in a
// collection: bad dimensions, a hotspot that does not match the file kind,
// or more colours than its palette can hold.
type InvalidEntryError string

func (e InvalidEntryError) Error() string { return "ico: invalid entry: " + string(e) }

// An UnsupportedDepthError reports a bit depth outside 1, 4, 8, 24 and 32.
type UnsupportedDepthError int

func (e UnsupportedDepthError) Error() string {
	return fmt.Sprintf("ico: unsupported bit depth: %d", int(e))
}

func formatErrorf(format string, args ...interface{}) error {
	return FormatError(fmt.Sprintf(format, args...))
}

func invalidEntryf(format string, args ...interface{}) error {
	return InvalidEntryError(fmt.Sprintf(format, args...))
}
