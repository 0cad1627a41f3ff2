package llm

import (
	"fmt"
	"strings"

	"github.com/intervu-ai/intervu/internal/domain"
)

const openingQuestionTemplate = `Based on the candidate's resume, generate an opening question that:
1. References a specific project or experience they mentioned
2. Is open-ended to encourage detailed explanation
3. Sets a comfortable but professional tone

Resume:
%s

Generate only the question, no preamble.`

const interviewerTemplate = `You are a Staff Software Engineer conducting a technical interview.

## Your Role
- Assess both technical depth and communication clarity
- Ask questions based on the candidate's specific experience
- Drill down when answers are vague or incomplete
- Maintain a professional but friendly tone

## Context
**Candidate Resume:**
%s

**Target Role:**
%s

## Interview Guidelines
1. Ask ONE concise question at a time. Wait for the response before continuing.
2. Start with a question about a specific project or skill from their resume.
3. If their answer is vague, ask a follow-up (e.g., "Why did you choose that approach?").
4. Cover both technical skills and behavioral aspects.
5. Keep your questions under 2 sentences for natural conversation flow.
6. Do not repeat questions or topics already discussed.

## Previous Questions Asked
%s

Generate the next interview question. Be specific and reference their experience.`

const evaluationTemplate = `You are evaluating a candidate's interview answer.

## Question Asked
%s

## Candidate's Answer
%s

## Evaluation Criteria
Evaluate the answer on these dimensions:

1. **Technical Accuracy (1-10)**: Is the technical content correct? Are there factual errors?
2. **Clarity (1-10)**: Was the explanation clear and well-structured?
3. **Depth (1-10)**: Did they demonstrate deep understanding vs surface-level knowledge?
4. **Completeness (1-10)**: Did they address all parts of the question?

## Response Format
Respond with valid JSON only:
{
    "technical_accuracy": <score>,
    "clarity": <score>,
    "depth": <score>,
    "completeness": <score>,
    "improvement_tip": "<one specific, actionable suggestion>",
    "positive_note": "<one thing they did well>"
}`

const reportTemplate = `Generate a comprehensive interview summary.

## Interview Transcript
%s

## Evaluation Points
%s

## Summary Requirements
Provide:
1. **Overall Assessment**: Brief overview of the candidate's performance
2. **Technical Strengths**: What they demonstrated well
3. **Areas for Improvement**: Specific skills or knowledge gaps
4. **Communication Score (1-10)**: How well they articulated their thoughts
5. **Technical Score (1-10)**: Depth and accuracy of technical knowledge
6. **Recommendation**: One concrete next step for the candidate

Keep the summary actionable and constructive. Focus on specific examples from the interview.`

func openingPrompt(resumeText string) string {
	return fmt.Sprintf(openingQuestionTemplate, resumeText)
}

func questionPrompt(history []domain.QA, resumeText, jobDescription string) string {
	previous := "None yet"
	if len(history) > 0 {
		var b strings.Builder
		for i, qa := range history {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "- %s", qa.Question)
		}
		previous = b.String()
	}
	return fmt.Sprintf(interviewerTemplate, resumeText, jobDescription, previous)
}

func evaluationPrompt(question, answer string) string {
	return fmt.Sprintf(evaluationTemplate, question, answer)
}

func reportPrompt(history []domain.QA, scorecards []domain.Scorecard) string {
	var transcript strings.Builder
	for i, qa := range history {
		if i > 0 {
			transcript.WriteString("\n\n")
		}
		fmt.Fprintf(&transcript, "Q%d: %s\nA%d: %s", i+1, qa.Question, i+1, qa.Answer)
	}

	var evals strings.Builder
	for i, sc := range scorecards {
		if i > 0 {
			evals.WriteString("\n")
		}
		fmt.Fprintf(&evals, "Q%d: Tech=%d, Clarity=%d, Depth=%d, Completeness=%d",
			i+1, sc.Technical, sc.Clarity, sc.Depth, sc.Completeness)
	}

	return fmt.Sprintf(reportTemplate, transcript.String(), evals.String())
}
