package errors

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxCompareTopics is the largest number of topics a comparison accepts.
const MaxCompareTopics = 5

// regionRegex matches ISO 3166-1 alpha-2 country codes in upper case.
var regionRegex = regexp.MustCompile(`^[A-Z]{2}$`)

// ValidateRegion checks that region is a two-letter upper-case country code.
func ValidateRegion(region string) error {
	if !regionRegex.MatchString(region) {
		return InvalidParameter("region", region, "Region must be a valid two-letter country code")
	}
	return nil
}

// ValidateNotEmpty rejects empty or whitespace-only values. label is the
// human name used in the message, e.g. "Topic".
func ValidateNotEmpty(param, label, value string) error {
	if strings.TrimSpace(value) == "" {
		return InvalidParameter(param, value, "%s cannot be empty", label)
	}
	for _, r := range value {
		if r == utf8.RuneError || unicode.IsControl(r) {
			return InvalidParameter(param, value, "%s contains invalid control characters", label)
		}
	}
	return nil
}

// ValidateRange checks min <= v <= max.
func ValidateRange(param, label string, v, min, max int) error {
	if v < min || v > max {
		return InvalidParameter(param, v, "%s must be between %d and %d", label, min, max)
	}
	return nil
}

// ValidateOneOf checks that value is one of allowed.
func ValidateOneOf(param, label, value string, allowed []string) error {
	if !slices.Contains(allowed, value) {
		return InvalidParameter(param, value, "Invalid %s. Must be one of: %s", label, strings.Join(allowed, ", "))
	}
	return nil
}

// ValidateTopics checks the topic list of a comparison: between one and
// [MaxCompareTopics] entries, none of them empty.
func ValidateTopics(topics []string) error {
	if len(topics) == 0 {
		return InvalidParameter("topics", topics, "At least one topic is required for comparison")
	}
	if len(topics) > MaxCompareTopics {
		return InvalidParameter("topics", topics, "Maximum of %d topics can be compared", MaxCompareTopics)
	}
	for _, topic := range topics {
		if err := ValidateNotEmpty("topics", "Topic", topic); err != nil {
			return err
		}
	}
	return nil
}
