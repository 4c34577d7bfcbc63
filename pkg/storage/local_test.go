package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestSaveAndFetchLocal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir, "/media/")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "sess-1", "ABC:1", pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "/media/sess-1/ABC_1.png", url)

	_, err = os.Stat(filepath.Join(dir, "sess-1", "ABC_1.png"))
	require.NoError(t, err)

	media, err := store.Fetch(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, "image/png", media.MimeType)
	assert.Equal(t, pngHeader, media.Data)
}

func TestSaveRejectsEmpty(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "/media")
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "s", "x", nil)
	assert.Error(t, err)
}

func TestFetchRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("%PDF-1.4\n%fake"))
	}))
	defer srv.Close()

	store, err := NewLocal(t.TempDir(), "/media")
	require.NoError(t, err)

	media, err := store.Fetch(context.Background(), srv.URL+"/doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", media.MimeType)
	assert.Equal(t, "doc.pdf", media.FileName)

	_, err = store.Fetch(context.Background(), srv.URL+"/missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchRemoteTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0123456789abcdef"))
	}))
	defer srv.Close()

	store, err := NewLocal(t.TempDir(), "/media")
	require.NoError(t, err)
	store.maxRemote = 16

	media, err := store.Fetch(context.Background(), srv.URL+"/exact.txt")
	require.NoError(t, err)
	assert.Len(t, media.Data, 16)

	store.maxRemote = 8
	_, err = store.Fetch(context.Background(), srv.URL+"/big.txt")
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestFetchUnknownReference(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "/media")
	require.NoError(t, err)

	_, err = store.Fetch(context.Background(), "ftp://x/y")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Fetch(context.Background(), "/media/../../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)
}
