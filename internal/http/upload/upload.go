// Package upload читает файлы из multipart-запросов.
package upload

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

// ErrTooLarge возвращается, когда тело запроса превышает допустимый размер.
var ErrTooLarge = errors.New("request body too large")

// Parse ограничивает размер тела и разбирает multipart-форму.
func Parse(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	const op = "upload.Parse"

	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%s: %w", op, ErrTooLarge)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// File возвращает файл из поля формы. Отсутствующее поле даёт nil без ошибки.
// Расширение берётся из поля "<field>_ext", если оно передано, иначе из имени файла.
func File(r *http.Request, field string) (*models.Upload, error) {
	const op = "upload.File"

	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ext := r.FormValue(field + "_ext")
	if ext == "" {
		ext = filepath.Ext(hdr.Filename)
	}
	contentType := hdr.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	return &models.Upload{
		Ext:         strings.TrimPrefix(ext, "."),
		ContentType: contentType,
		Data:        data,
	}, nil
}
