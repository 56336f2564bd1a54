package repository

import "strings"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// pageWindow normalises page/size input and returns the LIMIT and OFFSET.
func pageWindow(page, size int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > maxPageSize {
		size = defaultPageSize
	}
	return size, (page - 1) * size
}

func sortDirection(raw, fallback string) string {
	order := strings.ToUpper(raw)
	if order != "ASC" && order != "DESC" {
		return fallback
	}
	return order
}
