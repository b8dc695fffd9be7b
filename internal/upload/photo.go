package upload

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"store-directory/internal/config"
	appErrors "store-directory/pkg/errors"
)

// Processor accepts an uploaded photo, verifies it is an image, scales
// it to the configured width and writes it to the public uploads
// directory under a random filename.
type Processor struct {
	dir      string
	maxWidth int
}

func NewProcessor(cfg *config.UploadConfig) (*Processor, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	maxWidth := cfg.MaxWidth
	if maxWidth <= 0 {
		maxWidth = 800
	}
	return &Processor{dir: cfg.Dir, maxWidth: maxWidth}, nil
}

// Process stores the uploaded file and returns the generated filename.
// The declared media type must be an image type; anything else is
// rejected with ErrNotAnImage before any bytes are decoded.
//
// The write happens outside any database transaction: if the caller's
// subsequent save fails the file is orphaned on disk.
func (p *Processor) Process(file *multipart.FileHeader) (string, error) {
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", appErrors.ErrNotAnImage
	}

	ext := strings.TrimPrefix(contentType, "image/")
	filename := fmt.Sprintf("%s.%s", uuid.New().String(), ext)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	// Height 0 preserves the aspect ratio.
	resized := imaging.Resize(img, p.maxWidth, 0, imaging.Lanczos)

	if err := imaging.Save(resized, filepath.Join(p.dir, filename)); err != nil {
		return "", fmt.Errorf("failed to write photo: %w", err)
	}
	return filename, nil
}
