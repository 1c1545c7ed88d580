package conf

// MergeDefaults merges the given maps into one, prefixing
// every key with the namespace ns.
func MergeDefaults[M ~map[string]V, V any](ns string, maps ...M) M {
	fullCap := 0
	for _, m := range maps {
		fullCap += len(m)
	}

	merged := make(M, fullCap)
	for _, m := range maps {
		for key, val := range m {
			if ns == "" {
				merged[key] = val
			} else {
				merged[ns+"."+key] = val
			}
		}
	}

	return merged
}
