package util

func InPlaceFilter[T any](s *[]T, p func(T) bool) {
	i := 0
	for _, e := range *s {
		if p(e) {
			(*s)[i] = e
			i++
		}
	}
	*s = (*s)[:i]
}

// Deduplicate keeps the first occurrence of every key, preserving order
func Deduplicate[T any, K comparable](items []T, key func(T) K) []T {
	seen := map[K]bool{}
	var filtered []T

	for _, item := range items {
		k := key(item)

		if !seen[k] {
			filtered = append(filtered, item)
			seen[k] = true
		}
	}

	return filtered
}

// Filter returns the items matching p without touching the input
func Filter[T any](items []T, p func(T) bool) []T {
	var filtered []T
	for _, item := range items {
		if p(item) {
			filtered = append(filtered, item)
		}
	}

	return filtered
}
