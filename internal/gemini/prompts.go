package gemini

import "fmt"

// DietitianPrompt is the fixed template; %s is the user's question.
const DietitianPrompt = "You are Dr. LifeSync, a professional health and nutrition expert. " +
	"Answer this health question directly with specific, actionable advice: %s. " +
	"Provide practical tips, exercises, or nutritional guidance. " +
	"Be conversational but informative. Keep under 200 words."

// FallbackReply is returned when no model produced an answer.
const FallbackReply = "I'm Dr. LifeSync! I'm experiencing high demand right now. " +
	"Here's some general advice: For most health questions, focus on balanced nutrition, " +
	"regular exercise, adequate sleep (7-9 hours), and staying hydrated. " +
	"Please try asking again in a moment!"

// BuildPrompt interpolates message into DietitianPrompt.
func BuildPrompt(message string) string {
	return fmt.Sprintf(DietitianPrompt, message)
}
