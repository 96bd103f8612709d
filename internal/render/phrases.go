package render

import (
	"fmt"
	"time"
)

// CountPhrase phrases a room's occupancy, empty for an empty room.
func CountPhrase(count int) string {
	switch count {
	case 0:
		return ""
	case 1:
		return "1 person"
	default:
		return fmt.Sprintf("%d people", count)
	}
}

// MinutesAgoPhrase phrases how long ago something happened, loosely. The
// buckets are deliberately vague; nobody needs second precision here.
func MinutesAgoPhrase(then time.Time) string {
	d := time.Since(then)
	switch {
	case d < 0:
		return "in the future?"
	case d < 2*time.Minute:
		return "just now"
	case d < 5*time.Minute:
		return "a few minutes ago"
	case d < 10*time.Minute:
		return "five-ish minutes ago"
	case d < 20*time.Minute:
		return "15 minutes ago"
	case d < 30*time.Minute:
		return "recently"
	case d < 45*time.Minute:
		return "a half hour ago"
	case d < time.Hour:
		return "45 min ago"
	case d < 80*time.Minute:
		return "over an hour ago"
	default:
		return "a while ago"
	}
}
