package domain

import "errors"

var ErrUnknownMediaType = errors.New("unknown media type")

// MediaType names a media track a client can toggle or negotiate.
type MediaType string

const (
	MediaAudio  MediaType = "audio"
	MediaVideo  MediaType = "video"
	MediaScreen MediaType = "screen"
)

// ParseMediaType validates a client-supplied media type.
func ParseMediaType(raw string) (MediaType, error) {
	switch mt := MediaType(raw); mt {
	case MediaAudio, MediaVideo, MediaScreen:
		return mt, nil
	default:
		return "", ErrUnknownMediaType
	}
}
