package starlark

import "errors"

var ErrScriptOpen = errors.New("unable to open script file")
var ErrPathResolve = errors.New("unable to resolve script path")
