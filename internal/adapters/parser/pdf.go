// Package parser provides document parsing adapters.
// Adapter implementing ports.DocumentParser. PDF text extraction is
// delegated to an extraction service over HTTP.
package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PDFExtractor implements ports.DocumentParser by posting PDF bytes to an
// extraction service. Extraction is all-or-nothing: the full text or an
// error, never partial output.
type PDFExtractor struct {
	serviceURL string
	client     *http.Client
}

// NewPDFExtractor creates a PDF extractor client.
func NewPDFExtractor(serviceURL string) *PDFExtractor {
	if serviceURL == "" {
		serviceURL = "http://localhost:8081"
	}
	return &PDFExtractor{
		serviceURL: serviceURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// extractResponse is the extraction service response format.
type extractResponse struct {
	Text  string `json:"text"`
	Pages int    `json:"pages"`
	Error string `json:"error,omitempty"`
}

// Parse extracts text from PDF bytes via the extraction service.
func (p *PDFExtractor) Parse(ctx context.Context, data []byte, filename string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", p.serviceURL+"/parse", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling extraction service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("extraction service returned status %d", resp.StatusCode)
	}

	var result extractResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("extracting %s: %s", filename, result.Error)
	}

	return result.Text, nil
}

// SupportedFormats returns formats this parser handles.
func (p *PDFExtractor) SupportedFormats() []string {
	return []string{"pdf"}
}

// Healthy reports whether the extraction service is reachable.
func (p *PDFExtractor) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, "GET", p.serviceURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
