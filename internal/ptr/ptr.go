package ptr

// Ref returns a pointer to v.
func Ref[T any](v T) *T {
	return &v
}

// Value returns the value behind p, or the zero value when p is nil.
func Value[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
