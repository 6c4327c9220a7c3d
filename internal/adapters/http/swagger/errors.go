package swagger

import "errors"

// ErrServe marks an embedded document that cannot be served.
var ErrServe = errors.New("swagger serve failed")
