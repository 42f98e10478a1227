package recommend

import (
	"fmt"
	"strings"

	"github.com/claude/odos/internal/models"
)

const systemPrompt = "You are a professional fitness coach specializing in workout program design."

// buildPrompt embeds every request field into the user message.
func buildPrompt(req models.WorkoutRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a detailed %s workout plan with the following criteria:\n", req.Type)
	fmt.Fprintf(&b, "- Duration: %d minutes\n", req.DurationMinutes)
	fmt.Fprintf(&b, "- Equipment available: %s\n", strings.Join(req.Equipment, ", "))
	fmt.Fprintf(&b, "- Experience level: %s\n\n", req.ExperienceLevel)
	fmt.Fprintf(&b, "For a %s workout, include exercises for all relevant muscle groups with appropriate volume and intensity.\n", req.Type)
	b.WriteString("Format the response as a JSON array with each exercise containing:\n")
	b.WriteString("- name: exercise name\n")
	b.WriteString("- sets: number of sets\n")
	b.WriteString("- repsRange: rep range (e.g., \"8-12\")\n")
	b.WriteString("- muscleGroup: primary muscle group\n")
	b.WriteString("- notes: any special instructions or tips\n\n")
	b.WriteString("Ensure exercises are balanced across muscle groups and follow proper workout structure.")
	return b.String()
}
