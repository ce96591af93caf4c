// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package model

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Bundle carries free-form parameters for tune, private commands and session events.
type Bundle map[string]any

// Clone returns a shallow copy so queued notifications do not observe later mutation.
func (b Bundle) Clone() Bundle {
	if b == nil {
		return nil
	}
	out := make(Bundle, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// PlaybackParams controls time-shift playback.
type PlaybackParams struct {
	Speed float64
	Pitch float64
}

// TrackInfo describes one selectable track.
type TrackInfo struct {
	Type       TrackType
	ID         string
	Language   string
	Channels   int
	SampleRate int
	Width      int
	Height     int
	FrameRate  float64
}

// ErrInvalidRating classifies malformed flattened rating tokens.
var ErrInvalidRating = errors.New("invalid content rating")

const ratingDelimiter = "/"

// ContentRating is a parental-control rating (domain, system, rating, sub-ratings).
type ContentRating struct {
	Domain     string
	System     string
	Rating     string
	SubRatings []string
}

// Flatten renders the rating as a single token.
func (r ContentRating) Flatten() string {
	parts := append([]string{r.Domain, r.System, r.Rating}, r.SubRatings...)
	return strings.Join(parts, ratingDelimiter)
}

func (r ContentRating) String() string { return r.Flatten() }

// UnflattenContentRating parses a token produced by Flatten.
func UnflattenContentRating(token string) (ContentRating, error) {
	parts := strings.Split(token, ratingDelimiter)
	if len(parts) < 3 {
		return ContentRating{}, fmt.Errorf("%w: %q", ErrInvalidRating, token)
	}
	for _, p := range parts {
		if p == "" {
			return ContentRating{}, fmt.Errorf("%w: empty segment in %q", ErrInvalidRating, token)
		}
	}
	r := ContentRating{Domain: parts[0], System: parts[1], Rating: parts[2]}
	if len(parts) > 3 {
		r.SubRatings = append([]string(nil), parts[3:]...)
	}
	return r, nil
}

const passthroughPrefix = "content://tvinput/passthrough/"

// PassthroughChannelURI returns the channel reference a nested session is tuned to
// for the given hardware input.
func PassthroughChannelURI(inputID string) string {
	return passthroughPrefix + url.PathEscape(inputID)
}

// PassthroughInputID extracts the input id from a passthrough channel reference.
func PassthroughInputID(uri string) (string, bool) {
	rest, ok := strings.CutPrefix(uri, passthroughPrefix)
	if !ok || rest == "" {
		return "", false
	}
	id, err := url.PathUnescape(rest)
	if err != nil {
		return "", false
	}
	return id, true
}
