package tuner

import "strings"

// Meta-prompts are built by pure functions so their contracts are testable
// without a model: the current template and the user's feedback appear
// verbatim, the preference summary is included when present, and the
// revision instructions require placeholder preservation.

func revisionPrompt(tmpl, feedback, summary string) string {
	var sb strings.Builder
	sb.WriteString("You are a prompt engineering assistant. Revise the following prompt template to address the user's reported problems.\n")
	sb.WriteString("Do not simply repeat the original prompt.\n")
	sb.WriteString("Keep every {variable} placeholder of the current prompt in the revised prompt.\n")
	sb.WriteString("CURRENT PROMPT:\n")
	sb.WriteString(tmpl)
	sb.WriteString("\nEND OF CURRENT PROMPT.\n\n")
	sb.WriteString("PROBLEMS:\n")
	sb.WriteString(feedback)
	if summary != "" {
		sb.WriteString("\n")
		sb.WriteString(summary)
	}
	sb.WriteString("\nEND OF PROBLEMS.\n\n")
	sb.WriteString("Output ONLY the revised prompt template.\n")
	sb.WriteString("Do not add any greeting, explanation, suggestions or extra text.\n")
	sb.WriteString("No code blocks.\n")
	return sb.String()
}

func mergePrompt(ptype, prev string, feedbacks []string) string {
	var sb strings.Builder
	if prev != "" {
		sb.WriteString("Summarize the following feedbacks and previous summary for prompt type '")
		sb.WriteString(ptype)
		sb.WriteString("' into a concise summary for future improvements.\n")
		sb.WriteString("PREVIOUS SUMMARY:\n")
		sb.WriteString(prev)
		sb.WriteString("\nEND OF PREVIOUS SUMMARY.\n")
		sb.WriteString("FEEDBACKS:\n")
		sb.WriteString(strings.Join(feedbacks, "\n"))
		sb.WriteString("\nEND OF FEEDBACKS.\n")
	} else {
		sb.WriteString("Summarize the following problems for prompt type '")
		sb.WriteString(ptype)
		sb.WriteString("' into a very concise summary for future improvements.\n")
		sb.WriteString("PROBLEMS:\n")
		sb.WriteString(strings.Join(feedbacks, "\n"))
		sb.WriteString("\nEND OF PROBLEMS.\n")
	}
	sb.WriteString("No greetings or extra text, just the summary.\n")
	return sb.String()
}

func typePrompt(tmpl string) string {
	var sb strings.Builder
	sb.WriteString("Analyze the following prompt template and label its task type in less than 3 words (e.g., summarization, classification, extraction, translation, story generation).\n")
	sb.WriteString("Output ONLY the type, no explanation or extra text.\n")
	sb.WriteString("PROMPT TEMPLATE:\n")
	sb.WriteString(tmpl)
	sb.WriteString("\n")
	return sb.String()
}
