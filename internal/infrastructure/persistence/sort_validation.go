package persistence

import "strings"

// CampaignSortFields are the columns campaign lists may be ordered by
var CampaignSortFields = map[string]bool{
	"id":                  true,
	"created_at":          true,
	"updated_at":          true,
	"slug":                true,
	"title":               true,
	"status":              true,
	"leaf_count":          true,
	"supporter_count":     true,
	"monthly_total_cents": true,
}

// BridgeSortFields are the columns bridge lists may be ordered by
var BridgeSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"slug":         true,
	"title":        true,
	"status":       true,
	"raised_cents": true,
	"goal_cents":   true,
	"donor_count":  true,
}

// ValidateSortOrder returns ASC for a case-insensitive "asc" and DESC for
// anything else
func ValidateSortOrder(dir string) string {
	if strings.EqualFold(strings.TrimSpace(dir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns field when it is one of allowed, else fallback.
// Matching is exact so that only whitelisted column names reach SQL.
func ValidateSortField(field string, allowed map[string]bool, fallback string) string {
	if f := strings.TrimSpace(field); allowed[f] {
		return f
	}
	return fallback
}

// orderClause orders by a whitelisted column, newest first by default, with
// id as a stable tiebreaker for paging
func orderClause(field, dir string, allowed map[string]bool) string {
	d := ValidateSortOrder(dir)
	return ValidateSortField(field, allowed, "created_at") + " " + d + ", id " + d
}
