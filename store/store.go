package store

import (
	"time"
)

var (
	ContextTimeout = time.Duration(20) * time.Second
)

const maxLimit = 1000

type Pagination struct {
	Offset int
	Limit  int
}

func DefaultPagination() Pagination {
	return Pagination{
		Offset: 0,
		Limit:  10,
	}
}

func (p Pagination) WithLimit(limit int) Pagination {
	p.Limit = limit
	return p
}

// Normalize clamps negative offsets and out of range limits
func (p Pagination) Normalize() Pagination {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPagination().Limit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}
