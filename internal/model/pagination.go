package model

// Pagination is the metadata block attached to every paginated response.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalCount int `json:"totalCount"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes totalPages = ceil(totalCount/limit).
func NewPagination(page, limit, totalCount int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (totalCount + limit - 1) / limit
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}

// Offset returns the row offset for the page: (page-1) * limit.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}
