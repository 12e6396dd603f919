package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jobreadyai/backend/internal/models"
	"github.com/sirupsen/logrus"
)

// Upstream failure modes. A rejected credential is reported distinctly so the
// operator can tell a misconfigured key apart from a provider outage.
var (
	ErrInvalidCredential = errors.New("generation api credential rejected")
	ErrUnavailable       = errors.New("generation service unavailable")
)

// Client produces document HTML from a generation request.
type Client interface {
	Generate(ctx context.Context, docType models.DocumentType, req *models.GenerationRequest) (string, error)
}

// GeminiClient calls the Gemini generateContent endpoint directly over HTTP.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient returns the Gemini-backed client when an API key is configured,
// otherwise the deterministic mock so local development needs no network.
func NewClient(apiKey string) Client {
	if apiKey == "" {
		logrus.Info("No generation API key configured, using mock generator")
		return &MockClient{}
	}
	return &GeminiClient{
		apiKey:  apiKey,
		baseURL: "https://generativelanguage.googleapis.com/v1beta",
		model:   "gemini-1.5-flash",
		// No client-level timeout: a single attempt bounded by the caller's
		// context, no retry.
		httpClient: &http.Client{},
	}
}

// Generate builds the prompt for the requested document type, makes one call
// upstream and returns the cleaned HTML.
func (c *GeminiClient) Generate(ctx context.Context, docType models.DocumentType, req *models.GenerationRequest) (string, error) {
	prompt := BuildPrompt(docType, req)

	requestBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"maxOutputTokens": 8192,
			"temperature":     0.7,
		},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %v", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logrus.WithError(err).Error("Generation API call failed")
		return "", ErrUnavailable
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", ErrUnavailable
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		logrus.WithField("status", resp.StatusCode).Error("Generation API rejected credential")
		return "", ErrInvalidCredential
	}

	var response struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		Error *struct {
			Message string `json:"message"`
			Code    int    `json:"code"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		logrus.WithError(err).Error("Failed to parse generation response")
		return "", ErrUnavailable
	}

	if response.Error != nil {
		logrus.WithFields(logrus.Fields{
			"code":    response.Error.Code,
			"message": response.Error.Message,
		}).Error("Generation API returned an error")
		if response.Error.Code == http.StatusUnauthorized || response.Error.Code == http.StatusForbidden {
			return "", ErrInvalidCredential
		}
		return "", ErrUnavailable
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", ErrUnavailable
	}

	return StripCodeFences(response.Candidates[0].Content.Parts[0].Text), nil
}

// StripCodeFences removes a markdown code-fence wrapper the model sometimes
// puts around its HTML output.
func StripCodeFences(raw string) string {
	out := strings.TrimSpace(raw)
	if !strings.HasPrefix(out, "```") {
		return out
	}

	out = strings.TrimPrefix(out, "```html")
	out = strings.TrimPrefix(out, "```")
	out = strings.TrimSuffix(strings.TrimSpace(out), "```")
	return strings.TrimSpace(out)
}
