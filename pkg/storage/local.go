// Package storage keeps downloaded and uploaded media on local disk and
// resolves media references for outbound sends.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNotFound = errors.New("media not found")
	ErrTooLarge = errors.New("media too large")
)

// maxRemoteSize caps media fetched over HTTP.
const maxRemoteSize = 64 << 20

// Local stores files under Dir and serves them under BaseURL.
type Local struct {
	dir       string
	baseURL   string
	client    *http.Client
	maxRemote int64
}

func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating media directory: %w", err)
	}
	return &Local{
		dir:       dir,
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: 30 * time.Second},
		maxRemote: maxRemoteSize,
	}, nil
}

// Save writes data as <dir>/<sessionID>/<name><ext>, the extension coming
// from the detected content type, and returns the public URL.
func (l *Local) Save(ctx context.Context, sessionID, name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty media")
	}
	mt := mimetype.Detect(data)
	fileName := sanitize(name) + mt.Extension()

	sessionDir := filepath.Join(l.dir, sanitize(sessionID))
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		return "", fmt.Errorf("creating session media directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(sessionDir, fileName), data, 0o644); err != nil {
		return "", fmt.Errorf("writing media: %w", err)
	}
	return l.baseURL + "/" + sanitize(sessionID) + "/" + fileName, nil
}

// Media is resolved media content.
type Media struct {
	Data     []byte
	MimeType string
	FileName string
}

// Fetch resolves ref, either a URL previously returned by Save or an
// http(s) URL, and detects its content type.
func (l *Local) Fetch(ctx context.Context, ref string) (*Media, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case strings.HasPrefix(ref, l.baseURL+"/"):
		data, err = l.readLocal(strings.TrimPrefix(ref, l.baseURL+"/"))
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		data, err = l.readRemote(ctx, ref)
	default:
		return nil, fmt.Errorf("%w: unsupported reference %q", ErrNotFound, ref)
	}
	if err != nil {
		return nil, err
	}

	mt := mimetype.Detect(data)
	return &Media{Data: data, MimeType: mt.String(), FileName: filepath.Base(ref)}, nil
}

func (l *Local) readLocal(rel string) ([]byte, error) {
	clean := filepath.Clean("/" + rel)
	data, err := os.ReadFile(filepath.Join(l.dir, clean))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rel)
	}
	return data, err
}

func (l *Local) readRemote(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching media: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", ErrNotFound, url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxRemote+1))
	if err != nil {
		return nil, fmt.Errorf("reading media: %w", err)
	}
	if int64(len(data)) > l.maxRemote {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, url, l.maxRemote)
	}
	return data, nil
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, s)
}
