package upload

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-directory/internal/config"
	appErrors "store-directory/pkg/errors"
)

func fileHeader(t *testing.T, filename, contentType string, body []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	_, fh, err := req.FormFile("photo")
	require.NoError(t, err)
	return fh
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func newTestProcessor(t *testing.T) (*Processor, string) {
	t.Helper()
	dir := t.TempDir()
	p, err := NewProcessor(&config.UploadConfig{Dir: dir, MaxWidth: 800})
	require.NoError(t, err)
	return p, dir
}

func TestProcess_ResizesPNG(t *testing.T) {
	p, dir := newTestProcessor(t)

	fh := fileHeader(t, "shop.png", "image/png", pngBytes(t, 1600, 1000))

	filename, err := p.Process(fh)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(filename, ".png"), "filename should keep the image extension")
	_, err = uuid.Parse(strings.TrimSuffix(filename, ".png"))
	assert.NoError(t, err, "filename should be a random uuid")

	img, err := imaging.Open(filepath.Join(dir, filename))
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 500, img.Bounds().Dy(), "height must scale proportionally")
}

func TestProcess_RejectsNonImage(t *testing.T) {
	p, dir := newTestProcessor(t)

	fh := fileHeader(t, "notes.txt", "text/plain", []byte("just some text"))

	_, err := p.Process(fh)
	assert.ErrorIs(t, err, appErrors.ErrNotAnImage)

	entries, err := filepath.Glob(filepath.Join(dir, "*"))
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing may be written for a rejected upload")
}

func TestProcess_RejectsCorruptImage(t *testing.T) {
	p, _ := newTestProcessor(t)

	fh := fileHeader(t, "broken.png", "image/png", []byte("not actually a png"))

	_, err := p.Process(fh)
	require.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrNotAnImage, "a declared image that fails to decode is a different failure")
}
