package host

import "errors"

var ErrPropertyNotFound = errors.New("property not found")
var ErrPropertyUnavailable = errors.New("property unavailable")

// Reason maps a property-query error onto the human-readable string engines
// embed in script-facing log lines.
func Reason(err error) string {
	if err == nil {
		return "success"
	}
	return err.Error()
}
