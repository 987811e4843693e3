package utils

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Date layouts used on the wire
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = time.RFC3339
)

// GenerateUUID generates a new UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// Time helpers
func FormatTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func ParseDate(dateStr string) (time.Time, error) {
	return time.Parse(DateLayout, dateStr)
}

// AddYears adds calendar years to time
func AddYears(t time.Time, years int) time.Time {
	return t.AddDate(years, 0, 0)
}

// Contains checks if slice contains string
func Contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// JoinPath joins object-store path segments, dropping empty ones and stray slashes
func JoinPath(parts ...string) string {
	clean := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p != "" {
			clean = append(clean, p)
		}
	}
	return strings.Join(clean, "/")
}
