package scoring

import (
	"fmt"
	"strings"
)

const evaluationSystemPrompt = `You are an expert MSL trainer evaluating how well a Medical Science Liaison responded to a physician's question. Score fairly and consistently: reward direct answers, coverage of the question's key themes, and alignment with the physician's stated priorities and preferred engagement style. Penalize promotional language, evasion, and unsupported claims.`

func buildEvaluationUserMessage(responseText string, rubric Rubric) string {
	var b strings.Builder

	q := rubric.Question
	p := rubric.Persona

	b.WriteString(fmt.Sprintf("Physician Question: %s\n", q.Question))
	b.WriteString(fmt.Sprintf("Category: %s\n", q.Category))
	b.WriteString(fmt.Sprintf("Context: %s\n", q.Context))
	b.WriteString(fmt.Sprintf("Key Themes: %s\n", strings.Join(q.KeyThemes, ", ")))

	b.WriteString(fmt.Sprintf("\nPhysician Persona: %s, %s\n", p.Name, p.Specialty))
	b.WriteString(fmt.Sprintf("Practice Setting: %s\n", p.PracticeSetting.Type))
	b.WriteString(fmt.Sprintf("Communication Style: %s\n", p.CommunicationStyle.Tone))
	b.WriteString("Priorities:\n")
	for _, pr := range p.Priorities {
		b.WriteString(fmt.Sprintf("- %s\n", pr))
	}
	b.WriteString("Engagement Tips:\n")
	for _, tip := range p.EngagementTips {
		b.WriteString(fmt.Sprintf("- %s\n", tip))
	}

	b.WriteString("\nMSL Response:\n")
	b.WriteString(responseText)

	b.WriteString(`

Instructions:
Evaluate the MSL response against the question's key themes and the persona's priorities and engagement tips. Score 0-100 where:
- 80+ means the response directly answers the question, covers the key themes, and fits this persona's style
- 60-79 means a solid response with notable gaps
- below 60 means the response misses the question, the themes, or the persona

List which persona priorities and engagement tips the response actually covered (quote them exactly as given above), and the most important missing points.`)

	return b.String()
}
