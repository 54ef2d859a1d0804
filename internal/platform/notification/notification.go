// Package notification writes the team's persistent notices to a shared
// document store. Writes are best-effort: a failed write is logged and
// dropped, it never reaches the caller.
package notification

import (
	"fmt"
	"strings"
	"time"
)

// Category tags a notice for styling and filtering.
type Category string

const (
	CategoryInfo    Category = "info"
	CategorySuccess Category = "success"
	CategoryWarning Category = "warning"
	CategoryAlert   Category = "alert"
	CategoryMural   Category = "mural"
	CategoryAgenda  Category = "agenda"
	CategoryPatient Category = "patient"
)

var categories = []Category{
	CategoryInfo, CategorySuccess, CategoryWarning, CategoryAlert,
	CategoryMural, CategoryAgenda, CategoryPatient,
}

// Categories returns every accepted category.
func Categories() []Category {
	return append([]Category{}, categories...)
}

func (c Category) Valid() bool {
	for _, v := range categories {
		if c == v {
			return true
		}
	}
	return false
}

// ParseCategory accepts any of the known categories, case-insensitively.
// An empty string parses as info.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return CategoryInfo, nil
	}
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown notification type %q", s)
	}
	return c, nil
}

// TimeLayout is the createdAt format: UTC with millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Notification is the document body stored for each notice.
type Notification struct {
	Title     string   `json:"title"`
	Message   string   `json:"message"`
	Type      Category `json:"type"`
	CreatedAt string   `json:"createdAt"`
	ReadBy    []string `json:"readBy"`
}

// NewNotification builds a document stamped with now and an empty read set.
func NewNotification(title, message string, category Category, now time.Time) *Notification {
	return &Notification{
		Title:     title,
		Message:   message,
		Type:      category,
		CreatedAt: now.UTC().Format(TimeLayout),
		ReadBy:    []string{},
	}
}

// CollectionPath is the namespace all notices for appID are written to.
func CollectionPath(appID string) string {
	return "artifacts/" + appID + "/public/data/notifications"
}
