// Package converter talks to the external document-rendering service that
// turns filled .docx files into PDFs. The protocol is three calls: upload
// the document (base64 payload, returns a retrieval URL), request a
// synchronous conversion of that URL, then fetch the resulting PDF bytes.
package converter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Category errors surfaced to callers. Provider wording and payloads never
// cross this boundary; the full upstream detail goes to the log instead.
var (
	ErrProcessar = errors.New("falha ao processar o documento")
	ErrConverter = errors.New("falha ao converter o documento")
)

// Client is the typed conversion-service client. One instance is shared by
// every generation request; it holds no per-request state.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	log     *zap.Logger
}

func NewClient(baseURL, apiKey string, log *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

type uploadRequest struct {
	Filename string `json:"filename"`
	Data     string `json:"data"`
}

type uploadResponse struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

type convertRequest struct {
	URL    string `json:"url"`
	Format string `json:"format"`
	Sync   bool   `json:"sync"`
}

type convertResponse struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// ConvertDocxToPDF runs the three-step protocol and returns the PDF bytes.
// Any non-success status or error field at any step aborts the whole
// operation; there are no automatic retries, a failed conversion is terminal
// for the current generation attempt.
func (c *Client) ConvertDocxToPDF(ctx context.Context, docxBytes []byte, filename string) ([]byte, error) {
	var upload uploadResponse
	err := c.postJSON(ctx, "/files/upload", uploadRequest{
		Filename: filename,
		Data:     base64.StdEncoding.EncodeToString(docxBytes),
	}, &upload)
	if err != nil || upload.Error != "" || upload.URL == "" {
		c.log.Error("conversion upload failed",
			zap.String("filename", filename),
			zap.String("service_error", upload.Error),
			zap.Error(err),
		)
		return nil, ErrProcessar
	}

	var conv convertResponse
	err = c.postJSON(ctx, "/convert", convertRequest{
		URL:    upload.URL,
		Format: "pdf",
		Sync:   true,
	}, &conv)
	if err != nil || conv.Error != "" || conv.URL == "" {
		c.log.Error("conversion request failed",
			zap.String("filename", filename),
			zap.String("service_error", conv.Error),
			zap.Error(err),
		)
		return nil, ErrConverter
	}

	pdf, err := c.fetch(ctx, conv.URL)
	if err != nil {
		c.log.Error("converted file download failed",
			zap.String("filename", filename),
			zap.Error(err),
		)
		return nil, ErrConverter
	}
	return pdf, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, result interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("serializar requisição: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("criar requisição: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("requisição HTTP: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ler resposta: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, respBody)
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("decodificar resposta: %w", err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("criar requisição: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requisição HTTP: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
