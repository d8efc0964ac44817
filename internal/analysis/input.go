package analysis

import (
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/Veraticus/lensline/internal/api"
	"github.com/Veraticus/lensline/internal/common"
	"github.com/gabriel-vasile/mimetype"
)

// acceptedImageTypes mirrors what the upload form accepts.
var acceptedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Input is an image to analyze: either a local file payload or a URL.
// The zero Input is not valid; build one with NewFileInput or NewURLInput.
type Input struct {
	FileName    string
	ContentType string
	URL         string
	Data        []byte
}

// NewFileInput validates a local image payload by sniffing its content.
func NewFileInput(name string, data []byte) (Input, error) {
	if len(data) == 0 {
		return Input{}, fmt.Errorf("%w: %s is empty", common.ErrInvalidInput, name)
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), acceptedImageTypes...) {
		return Input{}, fmt.Errorf("%w: %s is %s (want JPEG, PNG, GIF or WebP)",
			common.ErrUnsupportedImage, name, mtype.String())
	}

	return Input{
		FileName:    filepath.Base(name),
		ContentType: mtype.String(),
		Data:        data,
	}, nil
}

// NewURLInput validates an absolute http(s) image URL.
func NewURLInput(raw string) (Input, error) {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Input{}, fmt.Errorf("%w: %q is not an absolute http(s) URL", common.ErrInvalidInput, raw)
	}
	return Input{URL: u.String()}, nil
}

// IsFile reports whether the input carries a local payload.
func (in Input) IsFile() bool {
	return len(in.Data) > 0
}

// Label names the input for logs and progress output.
func (in Input) Label() string {
	if in.IsFile() {
		return in.FileName
	}
	return in.URL
}

func (in Input) validate() error {
	if in.IsFile() == (in.URL != "") {
		return fmt.Errorf("%w: exactly one of a file or a URL is required", common.ErrInvalidInput)
	}
	return nil
}

func (in Input) request() api.AnalyzeRequest {
	if in.IsFile() {
		return api.AnalyzeRequest{Image: &api.Image{
			FileName:    in.FileName,
			ContentType: in.ContentType,
			Data:        in.Data,
		}}
	}
	return api.AnalyzeRequest{ImageURL: in.URL}
}
