// Package access decides whether a school may use the paid areas of the
// product. Evaluate is a pure function over the school row and the clock;
// the super-admin bypass is applied by the guard before calling it, never
// in here.
package access

import (
	"time"

	"github.com/qalopay/school-payments/internal/lib/strutil"
	"github.com/qalopay/school-payments/internal/models"
)

// Reason explains a denial. ReasonNone accompanies every allowed decision.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonNoTenant            Reason = "NO_TENANT"
	ReasonSubscriptionExpired Reason = "SUBSCRIPTION_EXPIRED"
	ReasonTrialExpired        Reason = "TRIAL_EXPIRED"
	ReasonAccountInactive     Reason = "ACCOUNT_INACTIVE"
)

// Decision is the evaluator's verdict.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Message returns the user-facing Arabic text for a denial reason.
func (r Reason) Message() string {
	switch r {
	case ReasonNoTenant:
		return "لا يوجد مدرسة مرتبطة بهذا الحساب. يرجى التواصل مع الدعم الفني."
	case ReasonSubscriptionExpired:
		return "انتهت فترة اشتراكك. يرجى تجديد الاشتراك للاستمرار."
	case ReasonTrialExpired:
		return "انتهت الفترة التجريبية المجانية. يرجى الاشتراك في إحدى الباقات للاستمرار."
	case ReasonAccountInactive:
		return "حساب المدرسة غير نشط أو تم إيقافه. يرجى مراجعة الإدارة."
	default:
		return ""
	}
}

// Evaluate compares the school's cached subscription fields against now at
// day granularity. An end date on the current calendar day still allows
// access. An active school with no subscription end date is allowed
// indefinitely: open-ended subscriptions are valid.
func Evaluate(school *models.School, now time.Time) Decision {
	if school == nil {
		return Decision{Allowed: false, Reason: ReasonNoTenant}
	}

	today := truncateToDay(now)

	switch strutil.NormalizeStatus(school.SubscriptionStatus) {
	case models.StatusActive:
		if school.SubscriptionEnd == nil || !truncateToDay(*school.SubscriptionEnd).Before(today) {
			return Decision{Allowed: true, Reason: ReasonNone}
		}
		return Decision{Allowed: false, Reason: ReasonSubscriptionExpired}
	case models.StatusTrial:
		if school.TrialEnd == nil || !truncateToDay(*school.TrialEnd).Before(today) {
			return Decision{Allowed: true, Reason: ReasonNone}
		}
		return Decision{Allowed: false, Reason: ReasonTrialExpired}
	default:
		// Suspended or anything unrecognized.
		return Decision{Allowed: false, Reason: ReasonAccountInactive}
	}
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
