package models

// Project status values accepted by the portfolio API.
const (
	StatusCompleted = "completed"
	StatusOngoing   = "ongoing"
	StatusPlanned   = "planned"
)

// Project category values accepted by the portfolio API.
const (
	CategoryAI               = "ai"
	CategoryRealTimeGraphics = "real-time-graphics"
	CategoryWeb              = "web"
	CategoryMobile           = "mobile"
	CategoryOther            = "other"
)

var (
	ProjectStatuses   = []string{StatusCompleted, StatusOngoing, StatusPlanned}
	ProjectCategories = []string{CategoryAI, CategoryRealTimeGraphics, CategoryWeb, CategoryMobile, CategoryOther}
)

func IsValidStatus(s string) bool   { return contains(ProjectStatuses, s) }
func IsValidCategory(s string) bool { return contains(ProjectCategories, s) }

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
