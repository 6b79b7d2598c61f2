package extraction

import "errors"

var (
	ErrCollaboratorPanic = errors.New("collaborator panicked")
	ErrNoCollaborator    = errors.New("no collaborator for file kind")
)
