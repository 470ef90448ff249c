package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// The OCR path always uses the vision-capable doubao model regardless of the
// configured chat model; the chat models reject image content.
const visionModel = "doubao-seed-1-6-vision-250815"

const (
	ocrTemperature = 0.1
	ocrMaxTokens   = 3000
)

type visionImageURL struct {
	URL string `json:"url"`
}

type visionPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *visionImageURL `json:"image_url,omitempty"`
}

type visionMessage struct {
	Role    string       `json:"role"`
	Content []visionPart `json:"content"`
}

type visionRequest struct {
	Model       string          `json:"model"`
	Messages    []visionMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

// OCRImage extracts text from a base64 or data-URI encoded image. Bounded by
// the shorter OCR timeout; images that need longer should be downscaled by
// the caller.
func (c *Client) OCRImage(ctx context.Context, apiKey, image, instruction string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, ocrTimeout)
	defer cancel()

	dataURI := image
	if !strings.HasPrefix(dataURI, "data:") {
		dataURI = "data:image/jpeg;base64," + dataURI
	}

	body := visionRequest{
		Model: visionModel,
		Messages: []visionMessage{
			{
				Role: "user",
				Content: []visionPart{
					{Type: "image_url", ImageURL: &visionImageURL{URL: dataURI}},
					{Type: "text", Text: instruction},
				},
			},
		},
		Temperature: ocrTemperature,
		MaxTokens:   ocrMaxTokens,
	}
	headers := map[string]string{"Authorization": "Bearer " + apiKey}

	raw, err := c.doPost(ctx, ProviderDoubao, c.doubaoBase+"/chat/completions", headers, body)
	if err != nil {
		return "", err
	}

	var decoded chatCompletionResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("parsing ocr response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", nil
	}
	return decoded.Choices[0].Message.Content, nil
}
