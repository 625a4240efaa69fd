package util

// RemoveDuplicateStrings keeps the first of each non-empty value that isn't ignored
func RemoveDuplicateStrings(values []string, ignoreList []string) []string {
	ignored := make(map[string]bool, len(ignoreList))
	for _, value := range ignoreList {
		ignored[value] = true
	}

	return Deduplicate(Filter(values, func(value string) bool {
		return value != "" && !ignored[value]
	}), func(value string) string {
		return value
	})
}
