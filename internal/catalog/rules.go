package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

func (r *Rule) compile() error {
	if r.Field == "" {
		return fmt.Errorf("rule without field")
	}

	switch r.Kind {
	case RuleRequired, RuleDate, RulePastDate, RuleFutureDate:
	case RulePattern:
		re, err := regexp.Compile(r.Param)
		if err != nil {
			return fmt.Errorf("compiling pattern for %s: %w", r.Field, err)
		}

		r.pattern = re
	case RuleMaxLength:
		n, err := strconv.Atoi(r.Param)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid max_length %q for %s", r.Param, r.Field)
		}

		r.maxLength = n
	default:
		return fmt.Errorf("unknown rule kind %q for %s", r.Kind, r.Field)
	}

	if r.Message == "" {
		r.Message = r.defaultMessage()
	}

	return nil
}

func (r Rule) defaultMessage() string {
	switch r.Kind {
	case RuleRequired:
		return r.Field + " is required"
	case RuleDate:
		return r.Field + " must be a date (YYYY-MM-DD)"
	case RulePastDate:
		return r.Field + " must be a date in the past"
	case RuleFutureDate:
		return r.Field + " must be a date in the future"
	case RulePattern:
		return r.Field + " has an invalid format"
	case RuleMaxLength:
		return fmt.Sprintf("%s must be at most %s characters", r.Field, r.Param)
	}

	return r.Field + " is invalid"
}

// Check reports whether value satisfies the rule as of now.
// Only RuleRequired rejects an empty value; the other kinds apply to present values.
func (r Rule) Check(value string, now time.Time) bool {
	value = strings.TrimSpace(value)

	if r.Kind == RuleRequired {
		return value != ""
	}

	if value == "" {
		return true
	}

	switch r.Kind {
	case RuleDate:
		_, err := time.Parse(time.DateOnly, value)
		return err == nil
	case RulePastDate:
		d, err := time.Parse(time.DateOnly, value)
		return err == nil && !d.After(startOfDay(now))
	case RuleFutureDate:
		// An expiry date is the last valid day, so today still counts.
		d, err := time.Parse(time.DateOnly, value)
		return err == nil && !d.Before(startOfDay(now))
	case RulePattern:
		if r.pattern == nil {
			r.pattern = regexp.MustCompile(r.Param)
		}

		return r.pattern.MatchString(value)
	case RuleMaxLength:
		n := r.maxLength
		if n == 0 {
			n, _ = strconv.Atoi(r.Param)
		}

		return utf8.RuneCountInString(value) <= n
	}

	return false
}

// startOfDay is midnight UTC of now's calendar day, matching how date-only values parse.
func startOfDay(now time.Time) time.Time {
	y, m, d := now.UTC().Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
