package prompts

const slotSpec = `Respond with a JSON object matching this exact structure:

{
  "slot_name": "<slot>",
  "confidence": 0.0
}

Field constraints:
- slot_name: Exactly one of the legal slot names given in the prompt, or
  an empty string when none applies.
- confidence: Number between 0 and 1 expressing how certain the choice is.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Never invent a slot name that is not in the list`

const documentSpec = `Respond with a JSON object matching this exact structure:

{
  "dates": ["YYYY-MM-DD"],
  "has_signature": false,
  "summary": "<one line>",
  "anomalies": ["<issue>"]
}

Field constraints:
- dates: Every date written in the document, normalized to YYYY-MM-DD.
- has_signature: Whether the document carries a signature, seal, or stamp.
- summary: One-line description of what the document is.
- anomalies: Problems a reviewer must act on. Empty when there are none.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Report only what appears in the provided text`

const tabularSpec = `Respond with a JSON object matching this exact structure:

{
  "dates": ["YYYY-MM-DD"],
  "missing_fields": ["<field>"],
  "anomalies": ["<issue>"]
}

Field constraints:
- dates: Dates found in the rows, normalized to YYYY-MM-DD.
- missing_fields: Columns or values the sheet should contain but does not.
- anomalies: Problems a reviewer must act on. Empty when there are none.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- The rows are CSV; the first row is the header`

const visionSpec = `Respond with a JSON object matching this exact structure:

{
  "dates": ["YYYY-MM-DD"],
  "detected_objects": ["<object>"],
  "violations": ["<description>"],
  "scene_description": "<one line>",
  "person_count": 0,
  "anomalies": ["<issue>"]
}

Field constraints:
- dates: Dates visible in the image, normalized to YYYY-MM-DD.
- detected_objects: Distinct objects relevant to the review.
- violations: Safety or compliance violations visible in the image.
- scene_description: One-line description of the scene.
- person_count: Integer count of visible people, never null.
- anomalies: Other problems a reviewer must act on.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Report only what is visible in the image`

const recognizeSpec = `Respond with a JSON object matching this exact structure:

{
  "text": "<transcription>"
}

Field constraints:
- text: The transcribed text with line breaks preserved. Empty string
  when no text is legible.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing`

const judgeSpec = `Respond with a JSON object matching this exact structure:

{
  "comment": "<overall assessment>"
}

Field constraints:
- comment: Two or three sentences summarizing the most important issues
  and what the submitter should do next.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Do not contradict the verdicts given in the input
- Do not mention reason codes`

var specs = map[Stage]string{
	StageSlot:      slotSpec,
	StageDocument:  documentSpec,
	StageTabular:   tabularSpec,
	StageVision:    visionSpec,
	StageRecognize: recognizeSpec,
	StageJudge:     judgeSpec,
}

// Spec returns the output specification for a stage.
// Returns ErrInvalidStage if the stage is not recognized.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
