package model

import "strings"

// Intent is the classified category of a user's message.
type Intent string

const (
	IntentUserDetails  Intent = "user_details"
	IntentLeaveBalance Intent = "leave_balance"
	IntentAttendance   Intent = "attendance"
	IntentPaidLeave    Intent = "paid_leave"
	IntentHRPolicy     Intent = "hr_policy"
	IntentGeneral      Intent = "general"
	// IntentUnrecognized covers any label the classifier returns outside the known set.
	IntentUnrecognized Intent = "unrecognized"
)

// Route is the workflow branch an intent selects.
type Route int

const (
	RouteGeneral Route = iota
	RouteSQL
	RoutePolicy
)

func (r Route) String() string {
	switch r {
	case RouteSQL:
		return "sql"
	case RoutePolicy:
		return "policy"
	default:
		return "general"
	}
}

// KnownIntents lists the categories offered to the classifier, in prompt order.
var KnownIntents = []Intent{
	IntentUserDetails,
	IntentLeaveBalance,
	IntentAttendance,
	IntentPaidLeave,
	IntentHRPolicy,
	IntentGeneral,
}

// ParseIntent maps a normalized classifier label onto the closed Intent set.
// Labels outside the known categories become IntentUnrecognized.
func ParseIntent(label string) Intent {
	label = strings.ToLower(strings.TrimSpace(label))
	for _, in := range KnownIntents {
		if string(in) == label {
			return in
		}
	}
	return IntentUnrecognized
}

func (i Intent) String() string {
	return string(i)
}

// Route reports the branch taken after classification.
func (i Intent) Route() Route {
	switch i {
	case IntentUserDetails, IntentLeaveBalance, IntentAttendance, IntentPaidLeave:
		return RouteSQL
	case IntentHRPolicy:
		return RoutePolicy
	case IntentGeneral, IntentUnrecognized:
		return RouteGeneral
	default:
		return RouteGeneral
	}
}

// UsesAnswer reports whether the response prompt should embed a computed answer.
func (i Intent) UsesAnswer() bool {
	return i.Route() != RouteGeneral
}
