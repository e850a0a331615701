package common

// Coalesce picks the first argument that is not its type's zero value, used for
// "flag, else generated default" choices.
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
