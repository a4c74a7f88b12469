package util

const DefaultPageSize = 100

func Calculate(limit, offset int) (int, int) {
	if limit <= 0 || limit > 10000 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
