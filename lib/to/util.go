package to

func Ptr[T any](v T) *T {
	return &v
}

func NilString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func EmptyString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// Value returns the value pointed to, or the zero value of the type if the pointer is nil.
func Value[T any](ptr *T) T {
	if ptr == nil {
		var zero T
		return zero
	}
	return *ptr
}
