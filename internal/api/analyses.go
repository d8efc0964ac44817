package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/Veraticus/lensline/internal/common"
	"github.com/Veraticus/lensline/internal/model"
)

// Image is a local file uploaded for analysis.
type Image struct {
	FileName    string
	ContentType string
	Data        []byte
}

// AnalyzeRequest carries exactly one of Image or ImageURL.
type AnalyzeRequest struct {
	Image    *Image
	ImageURL string
}

type listResponse struct {
	Analyses []model.AnalysisRecord `json:"analyses"`
}

// Analyze submits an image or URL for analysis.
func (c *Client) Analyze(ctx context.Context, in AnalyzeRequest) Result[model.AnalysisRecord] {
	body, contentType, err := encodeAnalyzeForm(in)
	if err != nil {
		return Unavailable[model.AnalysisRecord](err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("analyze"), bytes.NewReader(body))
	if err != nil {
		return Unavailable[model.AnalysisRecord](fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	var record model.AnalysisRecord
	if err := c.do(req, &record); err != nil {
		return unavailable[model.AnalysisRecord]("analyze", err)
	}
	if err := record.Validate(); err != nil {
		return Unavailable[model.AnalysisRecord](fmt.Errorf("analyze: %w: %w", common.ErrMalformedPayload, err))
	}
	return Success(record)
}

// ListAnalyses fetches the full remote history, most recent first.
func (c *Client) ListAnalyses(ctx context.Context) Result[[]model.AnalysisRecord] {
	req, err := c.newJSONRequest(ctx, http.MethodGet, c.endpoint("analyses"), nil)
	if err != nil {
		return Unavailable[[]model.AnalysisRecord](err)
	}

	var resp listResponse
	if err := c.do(req, &resp); err != nil {
		return unavailable[[]model.AnalysisRecord]("list analyses", err)
	}
	if resp.Analyses == nil {
		return Unavailable[[]model.AnalysisRecord](fmt.Errorf("list analyses: %w: missing analyses field", common.ErrMalformedPayload))
	}
	for _, record := range resp.Analyses {
		if err := record.Validate(); err != nil {
			return Unavailable[[]model.AnalysisRecord](fmt.Errorf("list analyses: %w: %w", common.ErrMalformedPayload, err))
		}
	}
	return Success(resp.Analyses)
}

// GetAnalysis fetches one record by id.
func (c *Client) GetAnalysis(ctx context.Context, id string) Result[model.AnalysisRecord] {
	req, err := c.newJSONRequest(ctx, http.MethodGet, c.endpoint("analyses", id), nil)
	if err != nil {
		return Unavailable[model.AnalysisRecord](err)
	}

	var record model.AnalysisRecord
	if err := c.do(req, &record); err != nil {
		return unavailable[model.AnalysisRecord]("get analysis", err)
	}
	if err := record.Validate(); err != nil {
		return Unavailable[model.AnalysisRecord](fmt.Errorf("get analysis: %w: %w", common.ErrMalformedPayload, err))
	}
	return Success(record)
}

// DeleteAnalysis deletes one record remotely. The response body is ignored.
func (c *Client) DeleteAnalysis(ctx context.Context, id string) Result[struct{}] {
	req, err := c.newJSONRequest(ctx, http.MethodDelete, c.endpoint("analyses", id), nil)
	if err != nil {
		return Unavailable[struct{}](err)
	}
	if err := c.do(req, nil); err != nil {
		return unavailable[struct{}]("delete analysis", err)
	}
	return Success(struct{}{})
}

func encodeAnalyzeForm(in AnalyzeRequest) ([]byte, string, error) {
	if (in.Image == nil) == (in.ImageURL == "") {
		return nil, "", fmt.Errorf("%w: exactly one of image or imageUrl is required", common.ErrInvalidInput)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if in.Image != nil {
		contentType := in.Image.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, in.Image.FileName))
		h.Set("Content-Type", contentType)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := part.Write(in.Image.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write image part: %w", err)
		}
	} else if err := w.WriteField("imageUrl", in.ImageURL); err != nil {
		return nil, "", fmt.Errorf("failed to write imageUrl field: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
