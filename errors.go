package gdrive

import "errors"

// ErrRetriesExhausted is returned by Upload when every attempt failed
// with a transient transport error. The returned error wraps this
// sentinel together with the final attempt's message; the original
// error chain is not preserved. That information loss is part of the
// contract: callers needing the full causal chain must disable retrying
// by observing individual attempts at the Service layer.
var ErrRetriesExhausted = errors.New("gdrive: transient retries exhausted")
