package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/pdiddy/graphrag-console/internal/httputil"
	"github.com/pdiddy/graphrag-console/pkg/types"
)

// UploadFile is one file sent to a storage container.
type UploadFile struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// ListStorageContainers returns the storage container names (GET /data).
func (c *Client) ListStorageContainers(ctx context.Context) (*types.StorageList, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/data", nil, nil)
	if err != nil {
		return nil, err
	}
	var out types.StorageList
	if err := c.doJSON("list storage containers", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadFiles sends files to the named storage container as multipart form
// data, one "files" part per file (POST /data?storage_name=X). A successful
// upload invalidates the cached index listing. Configured upload headers
// override the shared ones on this request.
func (c *Client) UploadFiles(ctx context.Context, storageName string, files []UploadFile) (*types.UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		if err := writeFilePart(mw, "files", f.Name, f.ContentType, f.Content); err != nil {
			return nil, fmt.Errorf("encoding %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("encoding upload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/data", url.Values{"storage_name": {storageName}}, &buf)
	if err != nil {
		return nil, err
	}
	httputil.SetHeaders(req, c.upload, "")
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out types.UploadResponse
	if err := c.doJSON("upload files", req, &out); err != nil {
		return nil, err
	}
	c.InvalidateIndexes()
	return &out, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// writeFilePart adds a form-data file part with an explicit content type.
func writeFilePart(mw *multipart.Writer, field, filename, contentType string, content io.Reader) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(filename)))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, content)
	return err
}
