package assessment

import (
	"fmt"
	"strings"
)

const Greeting = "Hi! I'm your Diabetes Assistant. Click 'Start Assessment' to check your diabetes risk, " +
	"or type 'nutrition advice' for diabetes-friendly meal ideas. You can also ask about other conditions " +
	"like 'hypertension and diabetes', or type 'find doctors in [location]' to locate specialists near you " +
	"(or click 'Search Doctors')."

const (
	msgReportReady = "I've prepared a detailed report for you that you can download below. " +
		"If you'd like, I can also help you find diabetes specialists near your location, " +
		"just click the 'Search Doctors' button!"
	msgNeedLocation = "Please specify a location (e.g., 'find doctors in Mumbai' or 'search doctors near Delhi'). " +
		"Alternatively, click the 'Search Doctors' button above."
	msgEmptyLocation   = "Location cannot be empty. Please try again (e.g., 'find doctors in Mumbai')."
	preventionTopic    = "How to prevent diabetes"
	noStrategiesMarker = "No specific strategies available."
)

func percent(p float64) string {
	return fmt.Sprintf("%.2f%%", p*100)
}

func predictionSummary(r PredictionResult) string {
	return fmt.Sprintf("Risk Level: %s, Probability: %s", r.RiskLevel, percent(r.Probability))
}

func assessmentResult(r PredictionResult, explanation string) string {
	return fmt.Sprintf("Based on your answers, your diabetes risk is: **%s** (Probability: %s)\n\n%s",
		r.RiskLevel, percent(r.Probability), explanation)
}

func assessmentFailed(err error) string {
	return fmt.Sprintf("Sorry, I encountered an error processing your assessment: %v. Please try again or ask a question.", err)
}

func actionFailed(err error) string {
	return fmt.Sprintf("I apologize, but I encountered an error: %v. Please try again.", err)
}

func providersFound(n int, location string) string {
	return fmt.Sprintf("I found %d diabetes specialists near %s:", n, location)
}

func noProviders(location string) string {
	return fmt.Sprintf("No specialists found near %s. Try a different location or increase the search radius.", location)
}

// ProviderCard renders one search result as chat text.
func ProviderCard(p Provider) string {
	var b strings.Builder
	b.WriteString(p.Name)
	b.WriteString("\n")
	b.WriteString(p.Address)
	fmt.Fprintf(&b, "\nRating: %g (%d reviews)", p.Rating, p.ReviewCount)
	fmt.Fprintf(&b, "\nExperience: %s", p.Experience)
	fmt.Fprintf(&b, "\nPhone: %s", p.Phone)
	if p.Website != "" {
		fmt.Fprintf(&b, "\nWebsite: %s", p.Website)
	}
	if r := p.TopReview; r != nil {
		fmt.Fprintf(&b, "\nTop Review: %q - %s (%g/5)", r.Text, r.Author, r.Rating)
	}
	return b.String()
}
