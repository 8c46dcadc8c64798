package domain

import "strings"

// Collection names understood by the store.
const (
	CollectionTickets = "tickets"
	CollectionBooked  = "booked_tickets"
)

// MissingMobile is stored when the primary passenger has no phone number.
const MissingMobile = "N/A"

// QueueType selects the AC or Non-AC class set.
type QueueType string

const (
	QueueAC    QueueType = "AC"
	QueueNonAC QueueType = "NON_AC"
)

var (
	acClasses    = map[string]bool{"1A": true, "2A": true, "3A": true, "CC": true, "EC": true}
	nonACClasses = map[string]bool{"SL": true, "2S": true}
)

// IsValidClass reports whether class is one of the supported travel classes.
func IsValidClass(class string) bool {
	c := strings.ToUpper(strings.TrimSpace(class))
	return acClasses[c] || nonACClasses[c]
}

// ParseQueueType returns "" for unknown or empty input, which means no class scoping.
func ParseQueueType(s string) QueueType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(QueueAC):
		return QueueAC
	case string(QueueNonAC), "NONAC", "NON-AC":
		return QueueNonAC
	default:
		return ""
	}
}

// Contains reports whether class belongs to the queue's class set.
func (q QueueType) Contains(class string) bool {
	c := strings.ToUpper(strings.TrimSpace(class))
	switch q {
	case QueueAC:
		return acClasses[c]
	case QueueNonAC:
		return nonACClasses[c]
	default:
		return true
	}
}

// Period is a booked-history window.
type Period string

const (
	PeriodToday Period = "TODAY"
	PeriodWeek  Period = "WEEK"
	PeriodMonth Period = "MONTH"
	PeriodAll   Period = "ALL"
)

// Identity carries the staff member making a request, when known.
type Identity struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}
