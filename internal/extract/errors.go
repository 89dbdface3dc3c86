package extract

import "errors"

var errUnsupported = errors.New("unsupported document format")
