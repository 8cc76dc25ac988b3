// Package vision is the boundary to the external vision-capable model.
//
// The contract is deliberately thin: given a conditioned image, return
// whatever free-form text the backend produced about it. No schema is
// enforced on this side; turning the text into structured records is
// the extract package's job. Two backends are provided: an
// OpenAI-compatible chat completion (which also covers local Ollama
// servers) and Google Cloud Vision document text detection.
package vision

import (
	"context"
	"image"
)

// Service describes an external capability that turns an image into
// free-form text purporting to describe vocabulary entries.
type Service interface {
	// ExtractText sends the image to the backend and returns its raw
	// textual reply. The call is a single blocking round trip; retry
	// and timeout policy belong to the caller's context.
	ExtractText(ctx context.Context, img image.Image) (string, error)
}
