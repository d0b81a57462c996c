package ai

import "fmt"

// TutorPrompt wraps a student's message in the Goal Mate tutor instructions.
func TutorPrompt(message string) string {
	return fmt.Sprintf(
		"You are Goal Mate, a helpful AI tutor for students. Respond to the user's message in an engaging, encouraging way. Keep responses concise (3-4 sentences) and educational. User message: \"%s\"",
		message,
	)
}
