package vision

import (
	"context"
	"fmt"
	"image"
	"os"
	"strings"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"vocab/internal/logger"
	"vocab/internal/preprocess"
)

// maxRequestBytes is Cloud Vision's limit for inline image content.
const maxRequestBytes = 20 * 1024 * 1024

// GoogleVisionService implements Service using Cloud Vision document
// text detection. It performs plain OCR: unlike the chat backend it
// takes no instructions, so the reply is the page text and the extract
// heuristics carry the full recovery burden.
type GoogleVisionService struct {
	client *gvision.ImageAnnotatorClient
	log    zerolog.Logger
}

// NewGoogleVisionService creates the OCR backend with credentials from
// the environment: GOOGLE_CREDENTIALS (inline JSON), then
// GOOGLE_APPLICATION_CREDENTIALS (file path), then application default
// credentials.
func NewGoogleVisionService(ctx context.Context) (*GoogleVisionService, error) {
	const op = "NewGoogleVisionService"

	var client *gvision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = gvision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapVisionError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = gvision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapVisionError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		client, err = gvision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapVisionError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return &GoogleVisionService{
		client: client,
		log:    logger.WithComponent("vision-google"),
	}, nil
}

// Close releases the underlying API client.
func (s *GoogleVisionService) Close() error {
	return s.client.Close()
}

// ExtractText runs document text detection over the image and returns
// the detected page text in reading order.
func (s *GoogleVisionService) ExtractText(ctx context.Context, img image.Image) (string, error) {
	const op = "ExtractText"

	encoded, err := preprocess.Encode(img, preprocess.Config{
		OutputFormat: preprocess.FormatPNG,
		// Lossless input gives the OCR engine the best shot.
		PNGCompressLevel: 6,
	})
	if err != nil {
		return "", WrapVisionError(op, err, "encoding image")
	}
	if len(encoded) > maxRequestBytes {
		return "", WrapVisionError(op, ErrImageTooLarge, fmt.Sprintf("encoded size: %d bytes", len(encoded)))
	}

	resp, err := s.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: encoded},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	})
	if err != nil {
		return "", WrapVisionError(op, err, "Vision API call failed")
	}

	if len(resp.Responses) == 0 {
		return "", WrapVisionError(op, ErrEmptyResponse, "no response from Vision API")
	}
	annRes := resp.Responses[0]
	if annRes.Error != nil {
		return "", WrapVisionError(op, fmt.Errorf("vision API error: %s", annRes.Error.Message), "")
	}

	text := strings.TrimSpace(annRes.GetFullTextAnnotation().GetText())
	if text == "" {
		return "", WrapVisionError(op, ErrEmptyResponse, "no text detected in image")
	}

	s.log.Debug().Int("text_len", len(text)).Msg("Document text detected")
	return text, nil
}
