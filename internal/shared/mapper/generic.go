package mapper

import "fmt"

// MapSliceWithError applies mapFunc to each element and stops at the first
// failure, reporting the failing index. Returns nil for a nil input.
func MapSliceWithError[T any, R any](items []T, mapFunc func(T) (R, error)) ([]R, error) {
	if items == nil {
		return nil, nil
	}

	result := make([]R, 0, len(items))
	for i, item := range items {
		mapped, err := mapFunc(item)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		result = append(result, mapped)
	}
	return result, nil
}
