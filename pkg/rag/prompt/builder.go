package prompt

import "strings"

// SystemPrompt fixes the assistant's grounding contract for every
// question.
const SystemPrompt = `You are a documentation assistant. You answer developer questions using only the reference material provided with each question. Every factual claim must come from the material; cite sources by their [n] index. If the material does not contain the answer, say so plainly instead of guessing.`

// Builder renders the grounded user prompt: reference material first,
// task framing, then the question.
type Builder struct {
	contextText string
	question    string
}

func NewBuilder(contextText string, question string) *Builder {
	return &Builder{
		contextText: contextText,
		question:    question,
	}
}

func (b *Builder) Build() string {
	var prompt strings.Builder

	prompt.WriteString("<reference_material>\n")
	prompt.WriteString(b.contextText)
	prompt.WriteString("\n</reference_material>\n\n")

	prompt.WriteString("<guidelines>\n")
	prompt.WriteString("1. Base your answer strictly on the reference material above\n")
	prompt.WriteString("2. Cite the sources you used as [1], [2] etc., matching the source numbers\n")
	prompt.WriteString("3. Prefer code examples from the material over invented ones\n")
	prompt.WriteString("4. If the material does not cover the question, say so honestly\n")
	prompt.WriteString("</guidelines>\n\n")

	prompt.WriteString("<user_question>\n")
	prompt.WriteString(b.question)
	prompt.WriteString("\n</user_question>\n\n")
	prompt.WriteString("Now answer based on the reference material:")

	return prompt.String()
}
