package httpapi

import "fmt"

// Message safely derives a human-readable message from any error value.
// A nil error yields the empty string.
func Message(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}

// FromPanic derives a message from a recovered panic value, which may be
// an error, a string, or anything else.
func FromPanic(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case error:
		return value.Error()
	case string:
		return value
	default:
		return fmt.Sprintf("%v", value)
	}
}
