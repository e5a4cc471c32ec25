// Package content публикует контент авторов. Публикация относится к действиям с правами записи:
// перед сохранением файлов статус аккаунта читается заново.
package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/content-marketplace/internal/lib/apperr"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/metrics"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
	"github.com/magabrotheeeer/content-marketplace/internal/services/accessgate"
	"github.com/magabrotheeeer/content-marketplace/internal/storage/blob"
)

// Store сохраняет метаданные контента.
type Store interface {
	CreateContent(ctx context.Context, c models.Content) (*models.Content, error)
}

// BlobStore хранилище файлов контента и обложек.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string, overwrite bool) (string, error)
	Delete(ctx context.Context, ref string) error
	PublicURL(ref string) string
}

// Gate проверяет право пользователя на действие.
type Gate interface {
	Check(ctx context.Context, userID string, action accessgate.Action) (*models.User, error)
}

// Service публикует контент.
type Service struct {
	store Store
	gate  Gate
	blobs BlobStore
	log   *slog.Logger
	newID func() string
}

// NewService создаёт Service.
func NewService(store Store, gate Gate, blobs BlobStore, log *slog.Logger) *Service {
	return &Service{
		store: store,
		gate:  gate,
		blobs: blobs,
		log:   log,
		newID: uuid.NewString,
	}
}

// Create проверяет поля запроса и права автора, сохраняет файл и обложку,
// затем создаёт запись. Если запись создать не удалось, файлы удаляются.
func (s *Service) Create(ctx context.Context, creatorID string, req models.CreateContentRequest) (*models.Content, error) {
	const op = "content.Create"
	log := s.log.With(slog.String("op", op), sl.UserID(creatorID))

	if err := validate(req); err != nil {
		return nil, apperr.Validation(op, err.Error())
	}

	if _, err := s.gate.Check(ctx, creatorID, accessgate.ActionUploadContent); err != nil {
		return nil, err
	}

	fileRef, err := s.put(ctx, "content", creatorID, req.File)
	if err != nil {
		return nil, err
	}
	thumbRef, err := s.put(ctx, "thumbnails", creatorID, req.Thumbnail)
	if err != nil {
		s.cleanup(ctx, log, fileRef)
		return nil, err
	}

	c, err := s.store.CreateContent(ctx, models.Content{
		CreatorID:    creatorID,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		PriceCents:   *req.PriceCents,
		FileRef:      fileRef,
		ThumbnailRef: thumbRef,
	})
	if err != nil {
		s.cleanup(ctx, log, fileRef, thumbRef)
		log.Error("failed to save content", sl.Err(err))
		return nil, apperr.Remote(op, err)
	}

	c.ThumbnailURL = s.blobs.PublicURL(c.ThumbnailRef)
	log.Info("content published", slog.String("content_id", c.ID))
	return c, nil
}

func validate(req models.CreateContentRequest) error {
	var missing []string
	if strings.TrimSpace(req.Title) == "" {
		missing = append(missing, "title")
	}
	if req.PriceCents == nil {
		missing = append(missing, "price")
	}
	if req.File.Empty() {
		missing = append(missing, "file")
	}
	if req.Thumbnail.Empty() {
		missing = append(missing, "thumbnail")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if *req.PriceCents < 0 {
		return errors.New("price must not be negative")
	}
	if ext(req.File) == "" || ext(req.Thumbnail) == "" {
		return errors.New("file extension is required")
	}
	return nil
}

// put кладёт файл под новым именем. При коллизии имя генерируется заново ровно один раз.
func (s *Service) put(ctx context.Context, prefix, creatorID string, u *models.Upload) (string, error) {
	const op = "content.put"

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		key := fmt.Sprintf("%s/%s/%s.%s", prefix, creatorID, s.newID(), ext(u))
		ref, err := s.blobs.Put(ctx, key, u.Data, u.ContentType, false)
		if err == nil {
			return ref, nil
		}
		if !errors.Is(err, blob.ErrCollision) {
			return "", apperr.Remote(op, err)
		}
		metrics.BlobCollisions.Inc()
		lastErr = err
	}
	return "", apperr.StorageConflict(op, "file could not be stored: name collision", lastErr)
}

func (s *Service) cleanup(ctx context.Context, log *slog.Logger, refs ...string) {
	for _, ref := range refs {
		if err := s.blobs.Delete(ctx, ref); err != nil {
			log.Warn("failed to delete orphaned file", slog.String("ref", ref), sl.Err(err))
		}
	}
}

func ext(u *models.Upload) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(u.Ext), "."))
}
