package generator

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"texturelab/apperrors"
)

const defaultTimeout = 120 * time.Second

type apiRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size,omitempty"`
	Quality        string `json:"quality,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"`
}

type apiResponse struct {
	Created int64       `json:"created"`
	Data    []imageData `json:"data"`
	Error   *apiError   `json:"error,omitempty"`
}

type imageData struct {
	URL           string `json:"url,omitempty"`
	B64JSON       string `json:"b64_json,omitempty"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// OpenAIClient calls the OpenAI images/generations endpoint (DALL-E 3) and
// downloads the resulting image. One call produces one image.
type OpenAIClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewOpenAIClient builds a client. An empty baseURL falls back to the
// public API; timeout bounds each generation call including the download.
func NewOpenAIClient(apiKey, model, baseURL string, timeout time.Duration) *OpenAIClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OpenAIClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Generate requests one image for the prompt and returns its bytes. All
// failure modes come back as *apperrors.ExternalServiceError so a batch
// caller can record them per slot instead of aborting.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, opts Options) (*Result, error) {
	apiReq := apiRequest{
		Model:          c.model,
		Prompt:         prompt,
		N:              1,
		Size:           opts.Size,
		Quality:        opts.Quality,
		ResponseFormat: "url",
	}

	jsonData, err := json.Marshal(apiReq)
	if err != nil {
		return nil, externalErr(apperrors.KindUnknown, fmt.Errorf("failed to marshal request: %w", err))
	}

	url := c.baseURL + "/images/generations"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, externalErr(apperrors.KindUnknown, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, externalErr(classifyTransportErr(err), fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, externalErr(classifyTransportErr(err), fmt.Errorf("failed to read response: %w", err))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, externalErr(apperrors.KindUnknown, fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err))
	}

	if resp.StatusCode != http.StatusOK || apiResp.Error != nil {
		return nil, externalErr(classifyAPIError(resp.StatusCode, apiResp.Error), apiErrToErr(resp.StatusCode, apiResp.Error))
	}

	if len(apiResp.Data) == 0 {
		return nil, externalErr(apperrors.KindUnknown, errors.New("response contained no images"))
	}

	data := apiResp.Data[0]
	result := &Result{RevisedPrompt: data.RevisedPrompt}

	switch {
	case data.URL != "":
		imageBytes, err := c.download(ctx, data.URL)
		if err != nil {
			return nil, err
		}
		result.Data = imageBytes
	case data.B64JSON != "":
		decoded, err := decodeBase64(data.B64JSON)
		if err != nil {
			return nil, externalErr(apperrors.KindUnknown, fmt.Errorf("failed to decode image: %w", err))
		}
		result.Data = decoded
	default:
		return nil, externalErr(apperrors.KindUnknown, errors.New("response image had neither url nor b64_json"))
	}

	return result, nil
}

// download fetches the generated image from the short-lived URL the API
// returns.
func (c *OpenAIClient) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, externalErr(apperrors.KindUnknown, fmt.Errorf("failed to create download request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, externalErr(classifyTransportErr(err), fmt.Errorf("failed to download image: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, externalErr(apperrors.KindUnknown, fmt.Errorf("image download returned status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, externalErr(classifyTransportErr(err), fmt.Errorf("failed to read image bytes: %w", err))
	}
	return data, nil
}

func decodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

func externalErr(kind string, err error) *apperrors.ExternalServiceError {
	return &apperrors.ExternalServiceError{Kind: kind, Err: err}
}

func classifyTransportErr(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.KindTimeout
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.KindTimeout
	}
	return apperrors.KindUnknown
}

func classifyAPIError(status int, apiErr *apiError) string {
	switch {
	case status == http.StatusTooManyRequests:
		return apperrors.KindRateLimited
	case status == http.StatusBadRequest:
		return apperrors.KindInvalidPrompt
	case apiErr != nil && apiErr.Code == "content_policy_violation":
		return apperrors.KindInvalidPrompt
	default:
		return apperrors.KindUnknown
	}
}

func apiErrToErr(status int, apiErr *apiError) error {
	if apiErr != nil {
		return fmt.Errorf("api error (status %d): %s", status, apiErr.Message)
	}
	return fmt.Errorf("api returned status %d", status)
}
