package sitecms

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

const (
	maxImageWidth = 1200
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
	uploadsSubdir = "uploads"
)

var errNotImage = fmt.Errorf("%w: file is not a supported image", ErrValidation)

// processImage decodes an image from src, downscales it to maxImageWidth and
// re-encodes it as JPEG. The returned item carries the dimensions and size.
func processImage(src io.Reader, originalName string) (GalleryItem, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return GalleryItem{}, nil, fmt.Errorf("%w: %v", errNotImage, err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w, h = maxImageWidth, newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return GalleryItem{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	base := Slugify(strings.TrimSuffix(originalName, filepath.Ext(originalName)))
	if base == "" {
		base = "image"
	}
	return GalleryItem{
		Filename:   base + ".jpg",
		Width:      w,
		Height:     h,
		Size:       buf.Len(),
		UploadedAt: time.Now().UTC().Format(time.RFC3339),
	}, buf.Bytes(), nil
}

func (a *App) uploadsDir() string {
	return filepath.Join(a.Config.StaticDir, uploadsSubdir)
}

// uniqueFilename appends a counter until name is free on disk and in the
// gallery table.
func (a *App) uniqueFilename(name string) (string, error) {
	base := strings.TrimSuffix(name, ".jpg")
	candidate := name
	for n := 2; ; n++ {
		_, statErr := os.Stat(filepath.Join(a.uploadsDir(), candidate))
		taken, err := a.Store.GalleryFilenameExists(candidate)
		if err != nil {
			return "", err
		}
		if !taken && errors.Is(statErr, os.ErrNotExist) {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d.jpg", base, n)
	}
}

func (a *App) apiGalleryUpload(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return a.apiError(c, fmt.Errorf("%w: no image file provided", ErrValidation))
	}
	if file.Size > maxUploadSize {
		return a.apiError(c, fmt.Errorf("%w: file too large (max 10MB)", ErrValidation))
	}
	src, err := file.Open()
	if err != nil {
		return a.apiError(c, err)
	}
	defer src.Close()

	item, data, err := processImage(src, file.Filename)
	if err != nil {
		return a.apiError(c, err)
	}
	item.Title = strings.TrimSpace(c.FormValue("title"))
	if item.Title == "" {
		item.Title = strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename))
	}
	item.Description = strings.TrimSpace(c.FormValue("description"))
	item.Category = strings.TrimSpace(c.FormValue("category"))
	if err := Validate(item); err != nil {
		return a.apiError(c, err)
	}

	if item.Filename, err = a.uniqueFilename(item.Filename); err != nil {
		return a.apiError(c, err)
	}
	if err := os.MkdirAll(a.uploadsDir(), 0o755); err != nil {
		return a.apiError(c, fmt.Errorf("create uploads dir: %w", err))
	}
	path := filepath.Join(a.uploadsDir(), item.Filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return a.apiError(c, fmt.Errorf("write image: %w", err))
	}
	if err := a.Store.SaveGalleryItem(&item); err != nil {
		_ = os.Remove(path)
		return a.apiError(c, err)
	}
	a.Logger.Info("gallery upload",
		zap.String("file", item.Filename),
		zap.Int("width", item.Width),
		zap.Int("height", item.Height))
	return c.JSON(http.StatusCreated, galleryJSON{GalleryItem: item, URL: item.URL()})
}

// removeUpload deletes the image file of a removed gallery item.
func (a *App) removeUpload(item GalleryItem) {
	if item.Filename == "" {
		return
	}
	path := filepath.Join(a.uploadsDir(), filepath.Base(item.Filename))
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		a.Logger.Warn("remove upload", zap.String("file", path), zap.Error(err))
	}
}
