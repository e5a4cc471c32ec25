// Package identity реализует конвейер проверки личности автора: автомат состояний
// и загрузку документа в blob-хранилище с единственной повторной попыткой при коллизии имени.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"strings"
	"time"

	"github.com/magabrotheeeer/content-marketplace/internal/lib/apperr"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/metrics"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
	"github.com/magabrotheeeer/content-marketplace/internal/services/accessgate"
	"github.com/magabrotheeeer/content-marketplace/internal/storage/blob"
	"github.com/magabrotheeeer/content-marketplace/internal/storage/repository"
)

var allowedExt = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "webp": true, "pdf": true,
}

// Gate проверяет право пользователя на действие.
type Gate interface {
	Check(ctx context.Context, userID string, action accessgate.Action) (*models.User, error)
}

// ProgressStore часть хранилища, отвечающая за запись онбординга.
type ProgressStore interface {
	GetProgress(ctx context.Context, userID string) (*models.OnboardingProgress, error)
	SubmitIdentityDocument(ctx context.Context, userID, documentRef string, at time.Time,
		guard func(current models.IdentityStatus) error) (*models.OnboardingProgress, error)
}

// BlobStore хранилище файлов.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string, overwrite bool) (string, error)
	Delete(ctx context.Context, ref string) error
}

// Pipeline принимает документы, удостоверяющие личность.
type Pipeline struct {
	gate     Gate
	progress ProgressStore
	blobs    BlobStore
	log      *slog.Logger
	now      func() time.Time
	suffix   func() (string, error)
}

// NewPipeline создаёт Pipeline.
func NewPipeline(gate Gate, progress ProgressStore, blobs BlobStore, log *slog.Logger) *Pipeline {
	return &Pipeline{
		gate:     gate,
		progress: progress,
		blobs:    blobs,
		log:      log,
		now:      time.Now,
		suffix:   randomSuffix,
	}
}

// Upload сохраняет документ и переводит проверку личности в submitted.
// Вызывающий блокируется до завершения сохранения.
func (p *Pipeline) Upload(ctx context.Context, userID string, doc models.Upload) (*models.OnboardingProgress, error) {
	const op = "identity.Upload"
	log := p.log.With(slog.String("op", op), sl.UserID(userID))

	ext := normalizeExt(doc.Ext)
	if doc.Empty() {
		return nil, apperr.Validation(op, "document file is required")
	}
	if !allowedExt[ext] {
		return nil, apperr.Validation(op, fmt.Sprintf("unsupported document type %q", doc.Ext))
	}

	if _, err := p.gate.Check(ctx, userID, accessgate.ActionSubmitIdentity); err != nil {
		return nil, err
	}

	current, err := p.currentStatus(ctx, userID)
	if err != nil {
		return nil, apperr.Remote(op, err)
	}
	if !CanUpload(current) {
		metrics.IdentityUploads.WithLabelValues("refused").Inc()
		return nil, uploadConflict(op, current)
	}

	ref, err := p.store(ctx, userID, doc, ext)
	if err != nil {
		metrics.IdentityUploads.WithLabelValues("store_failed").Inc()
		log.Error("failed to store identity document", sl.Err(err))
		return nil, err
	}

	progress, err := p.progress.SubmitIdentityDocument(ctx, userID, ref, p.now().UTC(), func(cur models.IdentityStatus) error {
		if !CanUpload(cur) {
			return uploadConflict(op, cur)
		}
		return nil
	})
	if err != nil {
		if delErr := p.blobs.Delete(ctx, ref); delErr != nil {
			log.Warn("failed to delete orphaned document", slog.String("ref", ref), sl.Err(delErr))
		}
		metrics.IdentityUploads.WithLabelValues("record_failed").Inc()
		if apperr.KindOf(err) != apperr.KindUnknown {
			return nil, err
		}
		return nil, apperr.Remote(op, err)
	}

	metrics.IdentityUploads.WithLabelValues("submitted").Inc()
	log.Info("identity document submitted", slog.String("ref", ref))
	return progress, nil
}

func (p *Pipeline) currentStatus(ctx context.Context, userID string) (models.IdentityStatus, error) {
	progress, err := p.progress.GetProgress(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.IdentityPending, nil
	}
	if err != nil {
		return "", err
	}
	return progress.IdentityStatus, nil
}

// store кладёт документ по уникальному пути. При коллизии имени путь генерируется
// заново ровно один раз; повторная коллизия считается фатальной.
func (p *Pipeline) store(ctx context.Context, userID string, doc models.Upload, ext string) (string, error) {
	const op = "identity.store"
	ct := contentType(doc.ContentType, ext)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		suffix, err := p.suffix()
		if err != nil {
			return "", apperr.Remote(op, fmt.Errorf("generate name: %w", err))
		}
		key := DocumentKey(userID, p.now(), suffix, ext)

		ref, err := p.blobs.Put(ctx, key, doc.Data, ct, false)
		if err == nil {
			return ref, nil
		}
		if !errors.Is(err, blob.ErrCollision) {
			return "", apperr.Remote(op, err)
		}
		metrics.BlobCollisions.Inc()
		lastErr = err
	}
	return "", apperr.StorageConflict(op, "document could not be stored: name collision", lastErr)
}

func uploadConflict(op string, current models.IdentityStatus) error {
	return apperr.Conflict(op, fmt.Sprintf("a new document cannot be uploaded while verification is %s", current))
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

func contentType(declared, ext string) string {
	if declared != "" {
		return declared
	}
	if ct := mime.TypeByExtension("." + ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func randomSuffix() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// DocumentKey строит путь документа в хранилище.
func DocumentKey(userID string, at time.Time, suffix, ext string) string {
	return fmt.Sprintf("identity/%s/%s-%s.%s", userID, at.UTC().Format("20060102150405"), suffix, ext)
}
