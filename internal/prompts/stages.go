package prompts

import (
	"encoding/json"
	"slices"
)

// Stage identifies a model call made by the pipeline.
type Stage string

// Pipeline stages that call a model.
const (
	StageSlot      Stage = "slot"
	StageDocument  Stage = "document"
	StageTabular   Stage = "tabular"
	StageVision    Stage = "vision"
	StageRecognize Stage = "recognize"
	StageJudge     Stage = "judge"
)

var stages = []Stage{
	StageSlot,
	StageDocument,
	StageTabular,
	StageVision,
	StageRecognize,
	StageJudge,
}

// Stages returns the list of valid stages.
func Stages() []Stage {
	return stages
}

// UnmarshalJSON validates that the decoded string is a known stage value.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v := Stage(raw)
	if !slices.Contains(stages, v) {
		return ErrInvalidStage
	}
	*s = v
	return nil
}

// ParseStage validates a string as a known stage.
// Returns ErrInvalidStage if the value is not recognized.
func ParseStage(s string) (Stage, error) {
	v := Stage(s)
	if !slices.Contains(stages, v) {
		return "", ErrInvalidStage
	}
	return v, nil
}
