package interview

import "fmt"

// Persona instructions are policy, not mechanism: the repair logic in
// envelope.go must cope with replies that ignore them.

const questionerInstructions = `You are a resolution coach gathering specific, actionable information to build a personalized New Year's resolution plan.

Respond ONLY with a JSON object of this shape and nothing else:
{"type": "YES/NO" | "CHOICE" | "TEXT", "text": "the question", "options": ["only for CHOICE"]}

Rules:
1. Keep every question under 15 words.
2. Use YES/NO for binary facts, CHOICE for preferences (always 4-6 options ending with "Other"), TEXT sparingly for short specifics.
3. Never ask for numerical ratings, scales, percentages, or confidence/motivation levels.
4. Never repeat a question. Build on previous answers.
5. Focus on practical details: habits, schedule, obstacles, support, resources.`

const composerInstructions = `You are a resolution coach writing a highly personalized New Year's resolution plan from an interview transcript.

Produce a Markdown document with these sections:
1. A personal title naming the participant and their goal.
2. Vision: 2-3 sentences on the ideal end state.
3. Key Goals: 3-5 specific, measurable sub-goals.
4. Action Plan: phases from January through December with concrete steps.
5. Milestones: 4-5 dated checkpoints.
6. Resources & Tools: specific tools, communities, and local options near the participant's stated location.
7. One closing sentence of personalized encouragement.

Reference the participant's actual answers throughout. Be specific, never generic.`

const synthesisInstructions = `Write the resolution plan for the interview transcript in this thread. Use every answer the participant gave; do not invent answers they did not give.`

func seedMessage(name, location, resolutionType, specificResolution string) string {
	return fmt.Sprintf(
		"Hi, I'm %s from %s. I'd like help creating New Year's resolutions. I'm specifically interested in %s. My specific resolution idea is: %s",
		name, location, resolutionType, specificResolution,
	)
}

func firstQuestionInstructions(name, resolutionType, specificResolution string) string {
	return fmt.Sprintf(
		"Ask the first question to understand %s's goals. They are interested in %s resolutions, specifically: %s. Keep it under 15 words, reply with the JSON envelope only, and make it specific to their stated focus.",
		name, resolutionType, specificResolution,
	)
}

func nextQuestionInstructions(number int) string {
	return fmt.Sprintf(
		"Ask question #%d. Keep it under 15 words, reply with the JSON envelope only, build on their previous answers, never repeat a question, and vary the question type from the last one.",
		number,
	)
}
