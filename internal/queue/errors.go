package queue

import "errors"

// ErrInvalidTransition indicates a state change that the job lifecycle does
// not permit, such as completing a job that is not running or not owned by
// the caller. The store is left unmodified when this is returned.
var ErrInvalidTransition = errors.New("invalid job transition")
