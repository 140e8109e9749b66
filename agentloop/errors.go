package agentloop

import "errors"

// ErrEmptyResponse reports that the runtime produced only empty turns and the
// retry budget is exhausted.
var ErrEmptyResponse = errors.New("agent runtime returned an empty response")
