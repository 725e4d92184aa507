package agent

import (
	"fmt"

	"diabetes-assistant/internal/assessment"
)

// Prompt wraps topic in the template selected by pc.
func Prompt(topic string, pc assessment.PromptContext) string {
	switch pc {
	case assessment.ContextWelcome:
		return "You are a friendly Diabetes Chatbot. Introduce yourself briefly and mention that users can click " +
			"'Start Assessment' to check their diabetes risk, type 'nutrition advice' for meal ideas, ask about other " +
			"conditions, or type 'find doctors in [location]' to find specialists. Keep it under 3 sentences."
	case assessment.ContextPrediction:
		return fmt.Sprintf("You are a supportive Diabetes Chatbot. The user got this diabetes risk prediction: %s. "+
			"Explain it in a warm, clear way and suggest next steps (e.g., see a doctor if high risk, or keep up "+
			"healthy habits if low risk). Keep it brief.", topic)
	case assessment.ContextEducation:
		return fmt.Sprintf("You are a Diabetes Chatbot. Give a short, friendly explanation about %s related to "+
			"diabetes. Be concise but helpful.", topic)
	default:
		return fmt.Sprintf("You are a Diabetes Chatbot. Answer this question in a friendly, clear way: %s. "+
			"Be concise but helpful.", topic)
	}
}
