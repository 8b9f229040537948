package requestcontext

var _ error = rejectError{}

// rejectError ends the request with status and a message safe to return.
type rejectError struct {
	status  int
	message string
}

func (r rejectError) Error() string {
	return r.message
}
