package loader

import "errors"

var ErrScriptNotAvailable = errors.New("script not available")
var ErrSchemeUnsupported = errors.New("unsupported scheme")
