package lib

import "errors"

var PAGE_SIZE_ARRAY = []int{4096, 8192, 16384}

// CeilPageSize. round maxPageSize up to the smallest supported page size that fits.
func CeilPageSize(maxPageSize int) (int, error) {
	for _, size := range PAGE_SIZE_ARRAY {
		if maxPageSize <= size {
			return size, nil
		}
	}
	return -1, errors.New("page size too large")
}
