package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"

	"github.com/ignatzorin/taskmarket-backend/internal/http/handlers/common"
	"github.com/ignatzorin/taskmarket-backend/internal/storage"
)

// Разрешённые типы вложений: изображения, документы и видео для видео-задач.
var allowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
	"application/zip": true,
	"video/mp4":       true,
}

// MediaHandler управляет загрузкой вложений.
type MediaHandler struct {
	storage *storage.AttachmentStorage
}

func NewMediaHandler(storage *storage.AttachmentStorage) *MediaHandler {
	return &MediaHandler{storage: storage}
}

// UploadAttachment обрабатывает POST /media/attachments.
// Возвращает URL, пригодный для массивов вложений задач и сдач.
func (h *MediaHandler) UploadAttachment(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		common.RespondBadRequest(c, "поле file обязательно")
		return
	}

	if file.Size == 0 {
		common.RespondBadRequest(c, "файл не может быть пустым")
		return
	}

	src, err := file.Open()
	if err != nil {
		common.Fail(c, fmt.Errorf("media: не удалось открыть файл: %w", err))
		return
	}
	defer src.Close()

	// Тип определяем по магическим байтам, расширению не доверяем.
	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		common.RespondBadRequest(c, "не удалось прочитать файл")
		return
	}

	kind, err := filetype.Match(buffer[:n])
	if err != nil || kind == filetype.Unknown || !allowedMimeTypes[kind.MIME.Value] {
		common.RespondBadRequest(c, "неподдерживаемый тип файла")
		return
	}

	if seeker, ok := src.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			common.Fail(c, fmt.Errorf("media: не удалось сбросить позицию файла: %w", err))
			return
		}
	}

	relativePath, size, err := h.storage.Save(c.Request.Context(), userID, file.Filename, src)
	if err != nil {
		common.Fail(c, err)
		return
	}

	url := "/media/" + filepath.ToSlash(relativePath)
	common.RespondData(c, http.StatusCreated, gin.H{
		"url":  url,
		"type": kind.MIME.Value,
		"size": size,
		"name": strings.TrimSpace(file.Filename),
	})
}
