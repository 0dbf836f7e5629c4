package access

import "errors"

// ErrNotAuthorized is returned when the actor lacks the permission an
// operation needs. For read and update it is also the outcome for a task ID
// that does not exist.
var ErrNotAuthorized = errors.New("not authorized to access this task")
