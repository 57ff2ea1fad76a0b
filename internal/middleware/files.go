package middleware

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/chai2010/webp"
	"github.com/fotitos/backend/internal/httperror"
	"github.com/fotitos/backend/internal/models"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const uploadedFileKey = "uploadedFile"

// StoredFile carries an upload through the middleware chain
type StoredFile struct {
	Field        string
	OriginalName string
	Path         string
	MimeType     string
	Size         int64
}

type imagePreset struct {
	width, height int
	cover         bool
	anchorTop     bool
	quality       float32
}

var imagePresets = map[string]imagePreset{
	"register": {width: 300, height: 300, cover: true, anchorTop: true, quality: 100},
	"post":     {width: 600, height: 600, cover: false, anchorTop: false, quality: 90},
}

// Uploader backs up a processed file to object storage and returns its public URL
type Uploader interface {
	UploadFile(ctx context.Context, localPath string) (string, error)
}

// FileMiddleware implements the image pipeline: multipart store, resize/transcode
// and backing-store upload
type FileMiddleware struct {
	uploadDir string
	storage   Uploader
}

// NewFileMiddleware creates a new FileMiddleware storing raw uploads in uploadDir
func NewFileMiddleware(uploadDir string, storage Uploader) *FileMiddleware {
	return &FileMiddleware{uploadDir: uploadDir, storage: storage}
}

// SingleFileStore saves the multipart file from the given field to disk under a
// collision-free name and leaves a StoredFile in the request context
func (m *FileMiddleware) SingleFileStore(field string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			fileHeader, err := c.FormFile(field)
			if err != nil {
				return httperror.New(http.StatusNotAcceptable, "Not Acceptable", "Not valid image file")
			}

			src, err := fileHeader.Open()
			if err != nil {
				return err
			}
			defer src.Close()

			ext := filepath.Ext(fileHeader.Filename)
			base := strings.TrimSuffix(filepath.Base(fileHeader.Filename), ext)
			name := fmt.Sprintf("%s-%s%s", base, uuid.NewString(), ext)
			path := filepath.Join(m.uploadDir, name)

			dst, err := os.Create(path)
			if err != nil {
				return err
			}
			size, err := io.Copy(dst, src)
			if closeErr := dst.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}

			c.Set(uploadedFileKey, &StoredFile{
				Field:        field,
				OriginalName: path,
				Path:         path,
				MimeType:     fileHeader.Header.Get("Content-Type"),
				Size:         size,
			})
			return next(c)
		}
	}
}

// Optimization resizes the stored upload to the preset dimensions and transcodes
// it to webp. Gifs pass through untouched.
func (m *FileMiddleware) Optimization(preset string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			file, ok := c.Get(uploadedFileKey).(*StoredFile)
			if !ok {
				return httperror.New(http.StatusNotAcceptable, "Not Acceptable", "Not valid image file")
			}

			if file.MimeType != "image/gif" {
				p := imagePresets[preset]
				ext := filepath.Ext(file.Path)
				outPath := strings.TrimSuffix(file.Path, ext) + "_1.webp"

				size, err := transcode(file.Path, outPath, p)
				if err != nil {
					return httperror.New(http.StatusNotAcceptable, "Not Acceptable", "Not valid image file")
				}
				file.Path = outPath
				file.MimeType = "image/webp"
				file.Size = size
			}
			return next(c)
		}
	}
}

// SaveDataImage backs the processed file up to object storage and leaves the
// Image value in the request context under the upload field name
func (m *FileMiddleware) SaveDataImage(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		file, ok := c.Get(uploadedFileKey).(*StoredFile)
		if !ok {
			return httperror.New(http.StatusNotAcceptable, "Not Acceptable", "Not valid image file")
		}

		url, err := m.storage.UploadFile(c.Request().Context(), file.Path)
		if err != nil {
			return err
		}

		c.Set(file.Field, models.Image{
			URLOriginal: file.OriginalName,
			URL:         url,
			MimeType:    file.MimeType,
			Size:        file.Size,
		})
		return next(c)
	}
}

// GetImage extracts the processed Image left by SaveDataImage, if any
func GetImage(c echo.Context, field string) (models.Image, bool) {
	img, ok := c.Get(field).(models.Image)
	return img, ok
}

func transcode(srcPath, dstPath string, p imagePreset) (int64, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return 0, err
	}

	bounds := src.Bounds()
	var dst *image.RGBA
	if p.cover {
		dst = image.NewRGBA(image.Rect(0, 0, p.width, p.height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, coverRect(bounds, p.width, p.height, p.anchorTop), draw.Over, nil)
	} else {
		w, h := insideFit(bounds.Dx(), bounds.Dy(), p.width, p.height)
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	}

	out, err := os.Create(dstPath)
	if err != nil {
		return 0, err
	}
	err = webp.Encode(out, dst, &webp.Options{Quality: p.quality})
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, err
	}

	info, err := os.Stat(dstPath)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// coverRect returns the largest source sub-rectangle with the target aspect
// ratio, anchored to the top or the center
func coverRect(b image.Rectangle, w, h int, anchorTop bool) image.Rectangle {
	srcW, srcH := b.Dx(), b.Dy()
	if srcW*h > w*srcH {
		// source is wider: crop width, centered
		cropW := srcH * w / h
		x := b.Min.X + (srcW-cropW)/2
		return image.Rect(x, b.Min.Y, x+cropW, b.Max.Y)
	}
	// source is taller: crop height
	cropH := srcW * h / w
	y := b.Min.Y
	if !anchorTop {
		y += (srcH - cropH) / 2
	}
	return image.Rect(b.Min.X, y, b.Max.X, y+cropH)
}

// insideFit scales the source dimensions to fit within the box, preserving
// aspect ratio and never upscaling
func insideFit(srcW, srcH, w, h int) (int, int) {
	if srcW <= w && srcH <= h {
		return srcW, srcH
	}
	if srcW*h > w*srcH {
		return w, srcH * w / srcW
	}
	return srcW * h / srcH, h
}
