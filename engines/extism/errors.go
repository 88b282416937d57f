package extism

import "errors"

var ErrScriptOpen = errors.New("unable to open plugin file")
var ErrPathResolve = errors.New("unable to resolve plugin path")
var ErrEngineOpen = errors.New("unable to open plugin runtime")
