package models

import "time"

// Subscription status values cached on the school row. The subscriptions
// audit table keeps its own copy; admin actions update both, nothing
// reconciles them afterwards.
const (
	StatusTrial     = "trial"
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// School is the tenant: the unit of subscription and data isolation.
// TrialEnd and SubscriptionEnd may be nil; a nil SubscriptionEnd on an
// active school means an open-ended subscription.
type School struct {
	ID                 string
	Name               string
	Email              string
	Phone              string
	Address            string
	OwnerID            string     // users.uid of the registering account
	SubscriptionStatus string     // trial, active or suspended
	TrialEnd           *time.Time // End of the free trial window
	SubscriptionEnd    *time.Time // End of the paid period, nil = open-ended
	IsActive           bool
	Plan               string // Display name of the assigned plan
	CreatedAt          time.Time
}
