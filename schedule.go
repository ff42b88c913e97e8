package cppq

import "time"

// ScheduleMode selects how a task becomes eligible for dispatch.
type ScheduleMode int

const (
	// Immediate enqueues directly onto the pending list.
	Immediate ScheduleMode = iota
	// DelayedAt enqueues onto the scheduled list, due at a fixed wall-clock
	// instant.
	DelayedAt
	// Cron enqueues onto the scheduled list, re-armed after each run
	// according to a cron expression (see cron.go).
	Cron
)

// Schedule carries the arguments for a non-immediate enqueue. Use
// ScheduleDelayed or ScheduleCron to build one; an Enqueue call without a
// Schedule is immediate.
type Schedule struct {
	Mode ScheduleMode
	At   time.Time
	Cron string
}

// ScheduleDelayed defers a task until the given wall-clock instant.
func ScheduleDelayed(at time.Time) Schedule {
	return Schedule{Mode: DelayedAt, At: at}
}

// ScheduleCron arms a task for recurring execution under the given cron
// expression (standard five-field cron syntax, as parsed by
// github.com/robfig/cron/v3).
func ScheduleCron(expr string) Schedule {
	return Schedule{Mode: Cron, Cron: expr}
}

// QueuePriority pairs a queue name with its dispatch priority. Higher values
// are serviced first; ties keep the order the queues were configured in.
type QueuePriority struct {
	Name     string
	Priority int
}
