package agents

import "errors"

var (
	ErrUnsupportedImage = errors.New("unsupported image format")
	ErrRenderFailed     = errors.New("failed to render document pages")
)
