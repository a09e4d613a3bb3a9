package dto

// StatsQuery holds query parameters of the yearly statistics endpoint.
type StatsQuery struct {
	ExportQuery
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}
