package artifacts

import (
	"fmt"
	"strings"

	"mslcoach/internal/bank"
)

const modelAnswerSystemPrompt = "You are an expert MSL trainer creating model answers."

const scenarioSystemPrompt = "You are an expert MSL trainer staging realistic physician roleplay scenarios."

func writeQuestionBlock(b *strings.Builder, q bank.Question) {
	fmt.Fprintf(b, "Question: %s\n", q.Question)
	fmt.Fprintf(b, "Category: %s\n", q.Category)
	fmt.Fprintf(b, "Context: %s\n", q.Context)
	fmt.Fprintf(b, "Key Themes to Cover: %s\n", strings.Join(q.KeyThemes, ", "))
}

func writePersonaBlock(b *strings.Builder, p bank.Persona) {
	fmt.Fprintf(b, "\nPhysician Persona:\n")
	fmt.Fprintf(b, "- %s, %s\n", p.Name, p.Specialty)
	fmt.Fprintf(b, "- Practice Setting: %s\n", p.PracticeSetting.Type)
	fmt.Fprintf(b, "- Priorities: %s\n", strings.Join(p.Priorities, ", "))
	fmt.Fprintf(b, "- Communication Style: %s\n", p.CommunicationStyle.Tone)
	fmt.Fprintf(b, "- Engagement Tips: %s\n", strings.Join(p.EngagementTips, ", "))
}

func buildModelAnswerPrompt(q bank.Question, p *bank.Persona) string {
	var b strings.Builder
	b.WriteString("Create a model answer for an MSL responding to this physician question.\n\n")
	writeQuestionBlock(&b, q)
	if p != nil {
		writePersonaBlock(&b, *p)
		b.WriteString(`
Create a strong MSL response (200-250 words) that:
1. Directly addresses the question
2. Covers the key themes
3. Uses appropriate communication style for this specific persona
4. Addresses their specific priorities
5. Is evidence-based and professional`)
	} else {
		b.WriteString(`
Create a strong MSL response (200-250 words) that:
1. Directly addresses the question
2. Covers the key themes
3. Is evidence-based and professional`)
	}
	return b.String()
}

func buildScenarioPrompt(q bank.Question, p bank.Persona, variantSeed int) string {
	var b strings.Builder
	b.WriteString("Stage a roleplay scenario in which this physician asks an MSL the question below.\n\n")
	writeQuestionBlock(&b, q)
	writePersonaBlock(&b, p)
	if variantSeed > 0 {
		fmt.Fprintf(&b, "\nVariant %d: produce a fresh setting and opening line, distinct from earlier variants.\n", variantSeed)
	}
	b.WriteString(`
The scenario should feel like a real field interaction: name the setting,
the physician's mood, their exact opening line (ending in or leading to the
question above), what a strong response should accomplish, and the unstated
concerns behind the question.`)
	return b.String()
}
