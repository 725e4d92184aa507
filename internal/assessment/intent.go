package assessment

import (
	"regexp"
	"strings"
)

type Intent int

const (
	IntentGeneral Intent = iota
	IntentStartAssessment
	IntentDoctorSearch
)

func (i Intent) String() string {
	switch i {
	case IntentStartAssessment:
		return "assessment-start"
	case IntentDoctorSearch:
		return "doctor-search"
	default:
		return "general-query"
	}
}

const startTrigger = "start assessment"

var doctorTriggers = []string{
	"find doctors",
	"search doctors",
	"locate doctors",
	"doctors in",
	"doctors near",
	"specialists in",
	"specialists near",
}

var (
	primaryLocation   = regexp.MustCompile(`(?:find|search|locate)\s+(?:for\s+)?(?:doctors|specialists|physicians)\s+(?:near|in|around|at)\s+(.+)`)
	secondaryLocation = regexp.MustCompile(`(?:doctors|specialists|physicians)\s+(?:in|near|around|at)\s+(.+)`)
	fallbackLocation  = regexp.MustCompile(`(?:find|search|locate|doctors|specialists|physicians)\s+(.+)`)
)

// fillers never form a location on their own; they are stripped from the
// front of an extracted location.
var fillers = map[string]bool{
	"find": true, "search": true, "locate": true, "for": true, "me": true,
	"doctors": true, "specialists": true, "physicians": true, "diabetes": true,
	"near": true, "in": true, "around": true, "at": true,
}

// Classify maps raw user input to an intent. For doctor searches it also
// returns the extracted, lowercased location, which may be empty.
func Classify(text string) (Intent, string) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == startTrigger {
		return IntentStartAssessment, ""
	}
	for _, trigger := range doctorTriggers {
		if strings.Contains(lower, trigger) {
			return IntentDoctorSearch, extractLocation(lower)
		}
	}
	return IntentGeneral, ""
}

func extractLocation(lower string) string {
	for _, re := range []*regexp.Regexp{primaryLocation, secondaryLocation, fallbackLocation} {
		if m := re.FindStringSubmatch(lower); m != nil {
			if loc := cleanLocation(m[1]); loc != "" {
				return loc
			}
		}
	}
	return ""
}

func cleanLocation(s string) string {
	words := strings.Fields(strings.TrimRight(strings.TrimSpace(s), "?.!,;:"))
	for len(words) > 0 && fillers[words[0]] {
		words = words[1:]
	}
	return strings.Join(words, " ")
}
