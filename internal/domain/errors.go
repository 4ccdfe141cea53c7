package domain

import "errors"

// Domain errors
var (
	ErrProjectNotFound   = errors.New("project not found")
	ErrPageNotFound      = errors.New("page not found")
	ErrTextBlockNotFound = errors.New("text block not found")

	ErrPipelineRunning = errors.New("pipeline is already running for this project")
	ErrNoPages         = errors.New("project has no pages")
	ErrNothingRendered = errors.New("export produced no rendered images")

	ErrInvalidFontSize  = errors.New("font size must be positive")
	ErrInvalidBox       = errors.New("box dimensions must be non-negative")
	ErrInvalidColor     = errors.New("text color must be a #RRGGBB hex string")
	ErrInvalidAlignment = errors.New("text alignment must be left, center or right")
	ErrInvalidArchive   = errors.New("archive contains no usable images")
)
