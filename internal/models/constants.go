package models

const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// statusRank orders the forward-only appointment lifecycle.
var statusRank = map[string]int{
	StatusPending:    0,
	StatusConfirmed:  1,
	StatusInProgress: 2,
	StatusCompleted:  3,
}

// Slots are the fixed daily appointment buckets the workshop operates on.
var Slots = []string{"08:00", "09:00", "10:00", "11:00", "14:00", "15:00", "16:00", "17:00"}

// IsValidSlot reports whether s is one of the fixed daily buckets.
func IsValidSlot(s string) bool {
	for _, slot := range Slots {
		if slot == s {
			return true
		}
	}
	return false
}

// CanTransition reports whether an appointment may move from one status to
// another. The lifecycle only moves forward; cancellation is allowed from
// any non-terminal state.
func CanTransition(from, to string) bool {
	if from == StatusCancelled || from == StatusCompleted {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

const (
	RoleAdmin = "admin"
)

const (
	// DefaultSessionTTL is how long an admin login stays valid.
	DefaultSessionTTL = 12 * 60 * 60 // 12 hours in seconds

	// DefaultMaxAdvanceDays limits how far ahead an appointment can be booked.
	DefaultMaxAdvanceDays = 90

	// DefaultExportRangeDays is the report window when none is given.
	DefaultExportRangeDays = 30

	// RateLimitRequests / RateLimitWindow bound anonymous API clients.
	RateLimitRequests = 30
	RateLimitWindow   = 60 // seconds
)

const (
	// CustomerMatchReuse reuses an existing customer row with the same
	// phone number; CustomerMatchInsert always inserts a new row. The two
	// policies reproduce the two historical behaviors of the system.
	CustomerMatchReuse  = "reuse"
	CustomerMatchInsert = "insert"
)
