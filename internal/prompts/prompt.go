// Package prompts holds the instructions and output specifications sent to
// model collaborators. Instructions vary by domain and may be tuned;
// specifications fix the JSON shape each stage must return.
package prompts

import "strings"

// Compose builds the prompt for one model call by combining the stage's
// instructions for domain, its output specification, and the call's input.
func Compose(stage Stage, domain, input string) (string, error) {
	instructions, err := Instructions(stage, domain)
	if err != nil {
		return "", err
	}

	spec, err := Spec(stage)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n")
	sb.WriteString(spec)

	if input != "" {
		sb.WriteString("\n\n")
		sb.WriteString(input)
	}

	return sb.String(), nil
}
