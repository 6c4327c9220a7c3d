package beatmap

import "errors"

var (
	ErrInvalidBeatmap = errors.New("invalid beatmap")
	ErrUnknownObject  = errors.New("unknown hit object kind")
	ErrUnknownFormat  = errors.New("unknown beatmap format")
)
