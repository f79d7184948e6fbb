package handler

import "strings"

// userMessage extracts the human-readable part from a wrapped error for
// display in a notice, e.g.
// "session.Manager.Create: validation error: end odometer must be greater
// than start odometer" → "end odometer must be greater than start odometer".
// Backend messages pass through untouched because rpc.RemoteError carries
// them unwrapped.
func userMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, prefix := range []string{
		"session.Manager.Create: ",
		"session.Manager.Update: ",
		"session.Manager.Delete: ",
		"session.Manager.Refresh: ",
		"session.Manager.Get: ",
	} {
		msg = strings.TrimPrefix(msg, prefix)
	}
	msg = strings.TrimPrefix(msg, "validation error: ")
	return msg
}
