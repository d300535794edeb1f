package model

// Search result types
const (
	SearchTypeAll      = "all"
	SearchTypeUsers    = "users"
	SearchTypeAssets   = "assets"
	SearchTypeProjects = "projects"
)

// SearchResponse fans out to users, assets and projects. Only the requested
// sections are populated; pagination applies to each section independently.
type SearchResponse struct {
	Query      string        `json:"query"`
	Users      []UserSummary `json:"users,omitempty"`
	Assets     []Asset       `json:"assets,omitempty"`
	Projects   []Project     `json:"projects,omitempty"`
	Pagination Pagination    `json:"pagination"`
}
