package util

import "fmt"

// Must panics if err is non-nil. It is meant for package-level
// initialization of values that can only fail on programmer error,
// like parsing embedded templates or schemas.
func Must[V any](v V, err error) V {
	if err != nil {
		panic(fmt.Sprintf("util.Must: %v", err))
	}

	return v
}
