package domain

// MergeFields folds the given maps into one, left to right: on key
// collision the later map wins. Inputs are never mutated; nil maps are
// skipped.
func MergeFields(maps ...map[string]any) map[string]any {
	out := make(map[string]any)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
