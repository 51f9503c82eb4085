package generation

import "fmt"

const promptTemplate = `
You are an interview question generator. Based on the following resume and details, generate 8–10 clear, concise interview questions.
Return ONLY the questions (one per line). No numbering, headings, or extra formatting.

Resume:
%s

Role: %s
Skills: %s
Years of Experience: %s
`

// BuildPrompt renders the fixed question-generation prompt for req.
func BuildPrompt(req Request) string {
	return fmt.Sprintf(promptTemplate, req.Resume, req.Role, req.Skills, req.Years)
}
