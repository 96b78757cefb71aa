package voiceagent

// Ptr returns a pointer to the given value. Useful for setting optional
// fields in structs that require pointers, such as Session configuration.
//
// Example usage:
//
//	session := Session{
//	    Voice:        Ptr("verse"),
//	    Instructions: Ptr("You are a helpful voice AI assistant."),
//	}
func Ptr[T any](v T) *T { return &v }
