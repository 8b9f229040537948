package errs

// ErrorKind identifies a kind of internal error.
// fully support for errors.Is and errors.As.
type ErrorKind string

const (
	// NotFound is returned when a requested item is not found.
	NotFound = ErrorKind("Not Found")

	// InvalidArgument is returned when a caller passes a malformed value.
	InvalidArgument = ErrorKind("Invalid Argument")

	// ArgumentRequired is returned when a required value is missing.
	ArgumentRequired = ErrorKind("Argument Required")

	// Conflict is returned when an operation clashes with one already in progress.
	Conflict = ErrorKind("Conflict")

	// Unavailable is returned when a remote dependency can't be reached.
	Unavailable = ErrorKind("Unavailable")

	// Timeout is returned when an operation exceeds its deadline.
	Timeout = ErrorKind("Timeout")

	InternalError      = ErrorKind("Internal Error")
	Unsupported        = ErrorKind("Unsupported")
	SomethingWentWrong = ErrorKind("Something Went Wrong")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}
