// Package client talks to a running foodlens server: it submits photos and
// reads back the recorded analyses.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/foodlens/backend/internal/domain"
)

const DefaultBaseURL = "http://localhost:3000"

// ErrRequestFailed is returned for any non-success response. The server's
// error text is not surfaced.
var ErrRequestFailed = errors.New("request failed")

type analyzeResponse struct {
	JSONFileName string `json:"jsonFileName"`
}

type resultDocument struct {
	Content domain.RawAnalysis `json:"content"`
}

type Client struct {
	httpClient *resty.Client
	baseURL    string
}

func New(baseURL string) *Client {
	c := Client{baseURL: DefaultBaseURL}
	if baseURL != "" {
		c.baseURL = baseURL
	}
	c.httpClient = resty.New().
		SetBaseURL(c.baseURL).
		SetHeader("Accept", "application/json")

	return &c
}

func (c *Client) req(ctx context.Context, result any) *resty.Request {
	request := c.httpClient.
		NewRequest().
		SetContext(ctx)

	if result != nil {
		request.SetResult(result)
	}

	return request
}

// Submit uploads one image and returns the handle of its result document
func (c *Client) Submit(ctx context.Context, filename string, image io.Reader) (string, error) {
	result := &analyzeResponse{}

	_, err := handleError(c.req(ctx, result).
		SetFileReader("image", filename, image).
		Post("/analyze"))
	if err != nil {
		return "", err
	}
	if result.JSONFileName == "" {
		return "", fmt.Errorf("%w: no handle in response", ErrRequestFailed)
	}

	return result.JSONFileName, nil
}

// Fetch resolves a handle to its normalized result
func (c *Client) Fetch(ctx context.Context, handle string) (domain.AnalysisResult, error) {
	doc := &resultDocument{}

	_, err := handleError(c.req(ctx, doc).
		SetPathParam("file", handle).
		Get("/processed/{file}"))
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	return domain.Normalize(doc.Content), nil
}

// Analyze submits an image and fetches the result in one call
func (c *Client) Analyze(ctx context.Context, filename string, image io.Reader) (domain.AnalysisResult, error) {
	handle, err := c.Submit(ctx, filename, image)
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	return c.Fetch(ctx, handle)
}

func (c *Client) Entries(ctx context.Context) ([]domain.AnalysisResult, error) {
	var raw []domain.RawAnalysis

	_, err := handleError(c.req(ctx, &raw).Get("/entries"))
	if err != nil {
		return nil, err
	}

	entries := make([]domain.AnalysisResult, 0, len(raw))
	for _, r := range raw {
		entries = append(entries, domain.Normalize(r))
	}
	return entries, nil
}

func (c *Client) Entry(ctx context.Context, index int) (domain.AnalysisResult, error) {
	raw := &domain.RawAnalysis{}

	_, err := handleError(c.req(ctx, raw).
		SetPathParam("index", strconv.Itoa(index)).
		Get("/entries/{index}"))
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	return domain.Normalize(*raw), nil
}

// handleError turns transport failures and >399 responses into
// ErrRequestFailed. Without this, failing responses would have nil error.
func handleError(res *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if res.IsError() {
		return res, fmt.Errorf("%w: %s %s (status: %d)",
			ErrRequestFailed, res.Request.Method, res.Request.URL, res.StatusCode())
	}

	return res, nil
}
