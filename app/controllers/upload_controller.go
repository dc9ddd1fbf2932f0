package controllers

import (
	"errors"
	"io"
	"net/http"
	"path"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/sweetshop/pkg/ctx"
	"github.com/shashiranjanraj/sweetshop/pkg/logger"
	"github.com/shashiranjanraj/sweetshop/pkg/response"
	"github.com/shashiranjanraj/sweetshop/pkg/storage"
)

// imageTypes maps sniffed content types to stored file extensions.
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type UploadController struct {
	disk     storage.Disk
	maxBytes int64
}

func NewUploadController(disk storage.Disk, maxBytes int64) *UploadController {
	return &UploadController{disk: disk, maxBytes: maxBytes}
}

// Image stores the multipart field "image" and returns its public URL.
func (uc *UploadController) Image(c *ctx.Context) {
	// Multipart framing needs some room beyond the file itself.
	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, uc.maxBytes+64<<10)
	if err := c.R.ParseMultipartForm(uc.maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.Error(http.StatusRequestEntityTooLarge, "Image is too large")
			return
		}
		c.Error(http.StatusBadRequest, "A multipart image upload is required")
		return
	}
	defer c.R.MultipartForm.RemoveAll() //nolint:errcheck

	file, _, err := c.R.FormFile("image")
	if err != nil {
		c.Error(http.StatusBadRequest, "Image file is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, uc.maxBytes+1))
	if err != nil {
		c.Error(http.StatusBadRequest, "Could not read image")
		return
	}
	if int64(len(content)) > uc.maxBytes {
		c.Error(http.StatusRequestEntityTooLarge, "Image is too large")
		return
	}

	contentType := http.DetectContentType(content)
	ext, ok := imageTypes[contentType]
	if !ok {
		c.Error(http.StatusBadRequest, "Only jpeg, png, webp or gif images are allowed")
		return
	}

	name := path.Join("sweets", uuid.NewString()+ext)
	if err := uc.disk.Put(c.Context(), name, content, contentType); err != nil {
		logger.WithCtx(c.Context()).Error("upload: store image", "name", name, "error", err)
		c.Error(http.StatusInternalServerError, "Error uploading image")
		return
	}
	c.Created("Image uploaded", response.Payload{"url": uc.disk.URL(name)})
}
