package workflow

import "errors"

// Configuration errors returned before a run starts. Once the first node has
// executed, failures are recorded in the trace instead of being returned.
var ErrNoEnabledNodes = errors.New("workflow has no enabled nodes")
