package basicseo

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/eringen/basicseo/seo"
)

const (
	maxImageWidth = 1200
	jpegQuality   = 82
	maxUploadSize = 10 << 20 // 10MB
)

// processedImage is an upload re-encoded as JPEG.
type processedImage struct {
	Filename string
	Title    string
	Width    int
	Height   int
	Data     []byte
}

// processImage decodes an image from src, resizes it to maxImageWidth when
// wider, and encodes it as JPEG.
func processImage(src io.Reader, originalName string) (processedImage, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return processedImage{}, fmt.Errorf("decode image: %w", err)
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
		return processedImage{}, fmt.Errorf("encode jpeg: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	slug := Slugify(base)
	if slug == "" {
		slug = "image"
	}
	return processedImage{
		Filename: slug + ".jpg",
		Title:    strings.TrimSpace(base),
		Width:    w,
		Height:   h,
		Data:     buf.Bytes(),
	}, nil
}

// uniqueFilename appends a counter until name is free in dir.
func uniqueFilename(dir, name string) string {
	base := strings.TrimSuffix(name, ".jpg")
	candidate := name
	for n := 2; ; n++ {
		if _, err := os.Stat(filepath.Join(dir, candidate)); os.IsNotExist(err) {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d.jpg", base, n)
	}
}

// handleMediaUpload stores an image as an attachment entry. With parent_id
// the attachment belongs to that entry, and featured=1 makes it the
// parent's featured image. With term_id it becomes the term's thumbnail.
func (a *App) handleMediaUpload(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	ctx := c.Request().Context()

	file, err := c.FormFile("image")
	if err != nil {
		return c.String(http.StatusBadRequest, "No image file provided")
	}
	if file.Size > maxUploadSize {
		return c.String(http.StatusBadRequest, "File too large (max 10MB)")
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	img, err := processImage(src, file.Filename)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid image: "+err.Error())
	}

	parentID := parseID(c.FormValue("parent_id"))
	termID := parseID(c.FormValue("term_id"))
	if parentID > 0 {
		if _, err := a.Store.GetEntry(ctx, parentID); err != nil {
			return c.String(http.StatusBadRequest, "Unknown parent entry")
		}
	}
	if termID > 0 {
		if _, err := a.Store.GetTerm(ctx, termID); err != nil {
			return c.String(http.StatusBadRequest, "Unknown term")
		}
	}

	dir := filepath.Join(a.Config.StaticDir, uploadsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	img.Filename = uniqueFilename(dir, img.Filename)
	if err := os.WriteFile(filepath.Join(dir, img.Filename), img.Data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}

	att := Entry{
		Type:     seo.TypeAttachment,
		Slug:     strings.TrimSuffix(img.Filename, ".jpg"),
		Title:    img.Title,
		Status:   StatusInherit,
		ParentID: parentID,
		File:     img.Filename,
	}
	if err := a.Store.SaveEntry(ctx, &att); err != nil {
		return err
	}
	a.Log.Info("uploaded attachment",
		zap.Int64("id", att.ID),
		zap.String("file", att.File),
		zap.Int("width", img.Width),
		zap.Int("height", img.Height))

	switch {
	case termID > 0:
		if err := a.Store.SetTermMeta(ctx, termID, seo.TermThumbnailKey, strconv.FormatInt(att.ID, 10)); err != nil {
			return err
		}
		return adminRedirect(c, termPath(termID), msgSaved)
	case parentID > 0:
		if c.FormValue("featured") == "1" {
			if err := a.Store.SetThumbnail(ctx, parentID, att.ID); err != nil {
				return err
			}
		}
		return adminRedirect(c, entityPath(parentID), msgSaved)
	}
	return adminRedirect(c, entityPath(att.ID), msgSaved)
}
