package model

import "testing"

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name           string
		page           int
		limit          int
		totalCount     int
		wantTotalPages int
	}{
		{name: "even split", page: 1, limit: 20, totalCount: 100, wantTotalPages: 5},
		{name: "partial last page", page: 1, limit: 20, totalCount: 101, wantTotalPages: 6},
		{name: "single short page", page: 1, limit: 20, totalCount: 3, wantTotalPages: 1},
		{name: "no results", page: 1, limit: 20, totalCount: 0, wantTotalPages: 0},
		{name: "zero limit", page: 1, limit: 0, totalCount: 50, wantTotalPages: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.limit, tt.totalCount)

			if p.TotalPages != tt.wantTotalPages {
				t.Errorf("totalPages = %d, want %d", p.TotalPages, tt.wantTotalPages)
			}
			if p.TotalCount != tt.totalCount {
				t.Errorf("totalCount = %d, want %d", p.TotalCount, tt.totalCount)
			}
		})
	}
}

func TestPaginationOffset(t *testing.T) {
	tests := []struct {
		page  int
		limit int
		want  int
	}{
		{page: 1, limit: 20, want: 0},
		{page: 2, limit: 20, want: 20},
		{page: 5, limit: 10, want: 40},
	}

	for _, tt := range tests {
		p := NewPagination(tt.page, tt.limit, 0)
		if got := p.Offset(); got != tt.want {
			t.Errorf("Offset(page=%d, limit=%d) = %d, want %d", tt.page, tt.limit, got, tt.want)
		}
	}
}
