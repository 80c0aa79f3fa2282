package scanning

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultExtractorTimeout bounds a single extraction call.
const DefaultExtractorTimeout = 120 * time.Second

// HTTPExtractor implements the Extractor interface against a text-extraction
// service that accepts a base64 PNG and replies with the receipt JSON.
type HTTPExtractor struct {
	url    string
	client *http.Client
}

// NewHTTPExtractor creates a new HTTPExtractor posting to url
func NewHTTPExtractor(url string, timeout time.Duration) (*HTTPExtractor, error) {
	if url == "" {
		return nil, fmt.Errorf("extractor url is required")
	}
	if timeout <= 0 {
		timeout = DefaultExtractorTimeout
	}

	return &HTTPExtractor{
		url: url,
		client: &http.Client{
			Timeout: timeout, // OCR of a large photo can be slow
		},
	}, nil
}

// extractRequest represents the request body sent to the service
type extractRequest struct {
	ContentType string `json:"content_type"`
	Image       string `json:"image"`
}

// ExtractItems sends the receipt to the service and parses its reply
func (e *HTTPExtractor) ExtractItems(ctx context.Context, imageData []byte, contentType string) (*Extraction, error) {
	// Prepare image data (convert to PNG if needed)
	finalImageData, _, err := prepareImageData(imageData, contentType)
	if err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(extractRequest{
		ContentType: "image/png",
		Image:       base64.StdEncoding.EncodeToString(finalImageData),
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling extractor: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extractor error (status %d): %s", resp.StatusCode, string(body))
	}

	data, err := ParseExtraction(string(body))
	if err != nil {
		return nil, fmt.Errorf("parsing extraction: %w", err)
	}
	return data, nil
}

// Close closes the extractor (no-op for HTTP client)
func (e *HTTPExtractor) Close() error {
	return nil
}
