package intent

import (
	"regexp"
	"strings"

	"dealsense/internal/entities"
)

// Phrases that explicitly point the request away from the prior turn's
// meeting or company.
var contextOverrideRes = []*regexp.Regexp{
	regexp.MustCompile(`\b(another|different|other|new) (meeting|call|company|account|deal)\b`),
	regexp.MustCompile(`\b(last|this|next) (week|month|quarter|year)\b`),
	regexp.MustCompile(`\bbetween .+ and .+\b`),
	regexp.MustCompile(`\bsince (january|february|march|april|may|june|july|august|september|october|november|december|q[1-4]|\d{4})\b`),
}

// ShouldReuseContext reports whether the prior turn's resolved company and
// meeting still scope this message. Reuse is refused when the message names
// a different known company, asks for another meeting, or pins an explicit
// time range.
func ShouldReuseContext(prior *ThreadContext, message string, snap *entities.Snapshot) bool {
	if prior == nil || (prior.PriorCompanyID == "" && prior.PriorMeetingID == "") {
		return false
	}

	normalized := strings.ToLower(message)
	for _, re := range contextOverrideRes {
		if re.MatchString(normalized) {
			return false
		}
	}

	if snap != nil {
		if company, _, ok := snap.MatchCompany(message); ok && company.ID != prior.PriorCompanyID {
			return false
		}
	}
	return true
}
