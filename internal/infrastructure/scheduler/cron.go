package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CronSchedule is a parsed five-field cron expression
// ("minute hour day-of-month month day-of-week"). Each field accepts a
// number, "*", or a "*/n" step; that covers every schedule this service
// runs without pulling in a full cron grammar.
type CronSchedule struct {
	Minute cronField
	Hour   cronField
	Dom    cronField
	Month  cronField
	Dow    cronField
}

type cronField struct {
	any   bool
	step  int // 0 means no step
	value int // exact value when neither any nor step
}

// ParseCronSchedule parses a five-field cron expression
func ParseCronSchedule(expr string) (CronSchedule, error) {
	parts := strings.Fields(expr)
	if len(parts) != 5 {
		return CronSchedule{}, fmt.Errorf("%w: expected 5 fields, got %d", ErrInvalidSchedule, len(parts))
	}

	limits := [5]int{59, 23, 31, 12, 6}
	fields := [5]cronField{}
	for i, part := range parts {
		field, err := parseCronField(part, limits[i])
		if err != nil {
			return CronSchedule{}, fmt.Errorf("%w: field %d %q: %v", ErrInvalidSchedule, i+1, part, err)
		}
		fields[i] = field
	}

	return CronSchedule{
		Minute: fields[0],
		Hour:   fields[1],
		Dom:    fields[2],
		Month:  fields[3],
		Dow:    fields[4],
	}, nil
}

func parseCronField(s string, max int) (cronField, error) {
	if s == "*" {
		return cronField{any: true}, nil
	}
	if stepStr, found := strings.CutPrefix(s, "*/"); found {
		step, err := strconv.Atoi(stepStr)
		if err != nil || step <= 0 || step > max {
			return cronField{}, fmt.Errorf("invalid step %q", stepStr)
		}
		return cronField{step: step}, nil
	}
	val, err := strconv.Atoi(s)
	if err != nil || val < 0 || val > max {
		return cronField{}, fmt.Errorf("value out of range")
	}
	return cronField{value: val}, nil
}

func (f cronField) matches(v int) bool {
	if f.any {
		return true
	}
	if f.step > 0 {
		return v%f.step == 0
	}
	return v == f.value
}

// Matches reports whether the schedule fires at the given time,
// truncated to the minute.
func (c CronSchedule) Matches(t time.Time) bool {
	return c.Minute.matches(t.Minute()) &&
		c.Hour.matches(t.Hour()) &&
		c.Dom.matches(t.Day()) &&
		c.Month.matches(int(t.Month())) &&
		c.Dow.matches(int(t.Weekday()))
}
