package models

import "time"

// Billing cycles offered by plans.
const (
	CycleMonthly = "monthly"
	CycleYearly  = "yearly"
)

// Plan is read-only reference data describing a purchasable tier.
type Plan struct {
	ID           string
	Name         string
	Price        float64
	BillingCycle string // monthly or yearly
}

// Subscription is one row of the billing audit trail. It records what was
// activated for a school and when, separate from the school's cached
// subscription_status/subscription_end fields.
type Subscription struct {
	ID           int
	SchoolID     string
	PlanID       string
	Price        float64
	BillingCycle string
	StartDate    time.Time
	EndDate      time.Time
	Status       string // trial or active at activation time
	IsPaid       bool
	ActivatedBy  string // users.uid of the actor, empty for self-registration
	CreatedAt    time.Time
}

// TrialNotice is the message published for a school whose trial window
// ends today; the notifier worker mails it out.
type TrialNotice struct {
	SchoolID   string    `json:"school_id"`
	SchoolName string    `json:"school_name"`
	Email      string    `json:"email"`
	OwnerName  string    `json:"owner_name"`
	TrialEnd   time.Time `json:"trial_end"`
}

// WelcomeNotice is published once after a successful school registration.
type WelcomeNotice struct {
	SchoolName string `json:"school_name"`
	Email      string `json:"email"`
	OwnerName  string `json:"owner_name"`
}
