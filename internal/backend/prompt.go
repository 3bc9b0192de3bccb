package backend

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Do not edit the prompts casually; the parse ladder and the answer style
// both depend on the output format they pin down.

const visionSystemPrompt = `
# Role
You are an expert trivia player.

# Task
I will give you a trivia question in the form of a question and you must answer it. The questions will be multiple choice with most likely 3 options. These questions are coming from robinhoods trivia game so they are mostly financial questions. If you clearly do not konw the answer than say that you do not know.

# Output Format
Provide your response in valid JSON format with these fields:
- "rationale": A very brief explanation (1-2 sentences)
- "answer": The final answer (just the letter or specific answer word/phrase)

Example:
{
  "rationale": "Company X was founded in 1975 by Bill Gates and Paul Allen.",
  "answer": "Microsoft"
}
`

const extractSystemPrompt = `
# Role
You are an expert trivia player with OCR capabilities.

# Task
I will give you an image containing a trivia question. Extract the text and answer the question.

# Output Format
Provide your response in valid JSON format with these fields:
- "question": The full text of the question
- "options": An array of the multiple choice options (if present)
- "rationale": A brief explanation of your reasoning (1-2 sentences)
- "answer": The final answer (just the letter or specific answer word/phrase)

Example:
{
  "question": "Which company was founded by Bill Gates and Paul Allen in 1975?",
  "options": ["Apple", "Microsoft", "IBM"],
  "rationale": "Microsoft was founded by Bill Gates and Paul Allen in 1975 in Albuquerque, New Mexico.",
  "answer": "Microsoft"
}
`

const textSystemPrompt = `
# Role
You are an expert trivia player.

# Task
I will give you a trivia question that has been extracted using OCR. The question will include multiple choice options.
These questions are coming from Robinhood's trivia game so they are mostly financial questions.
If you clearly do not know the answer, then say that you do not know.

# Output Format
You MUST provide your response in valid JSON format with these fields:
- "rationale": A very brief explanation (1-2 sentences)
- "answer": The final answer (just the letter or specific answer word/phrase)

Example:
{
  "rationale": "Company X was founded in 1975 by Bill Gates and Paul Allen.",
  "answer": "Microsoft"
}
`

const analyzeInstruction = "Analyze this trivia question."

// analysisSchema is the structured-output schema shared by the providers
// that accept one.
var analysisSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"rationale": {"type": "string"},
		"answer": {"type": "string"}
	},
	"required": ["rationale", "answer"],
	"additionalProperties": false
}`)

// TextPrompt folds the extracted question and its options into the single
// user message sent to text backends. Options are numbered from 1.
func TextPrompt(q Question) string {
	opts := make([]string, len(q.Options))
	for i, o := range q.Options {
		opts[i] = strconv.Itoa(i+1) + ". " + o
	}
	return "Question: " + q.Text + "\n\nOptions:\n" + strings.Join(opts, "\n")
}
