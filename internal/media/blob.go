package media

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrEmptyBlob is returned when a blob carries neither bytes nor a URL
var ErrEmptyBlob = errors.New("blob has no bytes and no url")

// ProgressFunc receives upload progress as a percentage in [0, 100]
type ProgressFunc func(percentage int)

// DefaultClient fetches remote blob bytes
var DefaultClient = &http.Client{
	Transport: otelhttp.NewTransport(http.DefaultTransport),
	Timeout:   30 * time.Second,
}

// Blob is an opaque reference to media held by the backend's blob storage. It is either
// already stored (URL) or pending upload (raw bytes).
type Blob struct {
	url        string
	data       []byte
	onProgress ProgressFunc
}

// FromURL references media that is already stored
func FromURL(url string) *Blob {
	return &Blob{url: url}
}

// FromBytes wraps raw bytes to be uploaded
func FromBytes(data []byte) *Blob {
	cp := make([]byte, len(data))
	copy(cp, data)
	return &Blob{data: cp}
}

// WithUploadProgress returns a copy of b that reports upload progress to fn
func (b *Blob) WithUploadProgress(fn ProgressFunc) *Blob {
	cp := *b
	cp.onProgress = fn
	return &cp
}

// ReportProgress forwards an upload percentage to the registered callback, clamped to [0, 100]
func (b *Blob) ReportProgress(percentage int) {
	if b == nil || b.onProgress == nil {
		return
	}
	switch {
	case percentage < 0:
		percentage = 0
	case percentage > 100:
		percentage = 100
	}
	b.onProgress(percentage)
}

// Pending reports whether the blob still holds bytes that have not been stored
func (b *Blob) Pending() bool {
	return b.url == "" && len(b.data) > 0
}

// DirectURL returns a URL that can be fetched directly. Pending blobs are rendered as a
// data URL so they can be previewed before upload.
func (b *Blob) DirectURL() string {
	if b.url != "" {
		return b.url
	}
	if len(b.data) == 0 {
		return ""
	}
	return "data:" + http.DetectContentType(b.data) + ";base64," + base64.StdEncoding.EncodeToString(b.data)
}

// Bytes returns the blob content, fetching it with client when only a URL is known.
// A nil client uses DefaultClient.
func (b *Blob) Bytes(ctx context.Context, client *http.Client) ([]byte, error) {
	if len(b.data) > 0 {
		cp := make([]byte, len(b.data))
		copy(cp, b.data)
		return cp, nil
	}
	if b.url == "" {
		return nil, ErrEmptyBlob
	}
	if client == nil {
		client = DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch blob: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch blob: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return data, nil
}

type blobJSON struct {
	URL  string `json:"url,omitempty"`
	Data []byte `json:"data,omitempty"`
}

// MarshalJSON encodes stored blobs by URL and pending blobs by their bytes
func (b *Blob) MarshalJSON() ([]byte, error) {
	if b.url != "" {
		return json.Marshal(blobJSON{URL: b.url})
	}
	return json.Marshal(blobJSON{Data: b.data})
}

// UnmarshalJSON accepts either shape produced by MarshalJSON, or a bare URL string
func (b *Blob) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*b = Blob{url: s}
		return nil
	}

	var v blobJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = Blob{url: v.URL, data: v.Data}
	return nil
}
