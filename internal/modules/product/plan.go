package product

import "time"

// DeliveryPlan is how a product is delivered: a recurring weekly schedule,
// a list of one-time dates, or nothing. Exactly one variant holds at a time.
type DeliveryPlan interface {
	columns() (Schedule, DateList)
	Kind() string
}

// RecurringPlan delivers on the enabled days of a weekly schedule.
type RecurringPlan struct{ Schedule Schedule }

// OneTimePlan delivers on explicit calendar dates.
type OneTimePlan struct{ Dates []time.Time }

// NoPlan means the product has no delivery availability.
type NoPlan struct{}

func (p RecurringPlan) columns() (Schedule, DateList) { return p.Schedule, DateList{} }
func (p OneTimePlan) columns() (Schedule, DateList)   { return nil, DateList(p.Dates) }
func (NoPlan) columns() (Schedule, DateList)          { return nil, DateList{} }

func (RecurringPlan) Kind() string { return "RECURRING" }
func (OneTimePlan) Kind() string   { return "ONE_TIME" }
func (NoPlan) Kind() string        { return "NONE" }

// planFromColumns rebuilds the plan from the stored column pair. A schedule
// wins if a row somehow carries both.
func planFromColumns(schedule Schedule, dates DateList) DeliveryPlan {
	switch {
	case schedule != nil:
		return RecurringPlan{Schedule: schedule}
	case len(dates) > 0:
		return OneTimePlan{Dates: dates}
	default:
		return NoPlan{}
	}
}
