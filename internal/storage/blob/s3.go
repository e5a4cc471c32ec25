// Package blob реализует объектное хранилище файлов (документы, контент, обложки)
// поверх S3-совместимого API. Поддерживается MinIO для локальной разработки.
package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/magabrotheeeer/content-marketplace/internal/config"
)

// ErrCollision возвращается Put, если объект с таким ключом уже есть, а перезапись не запрошена.
var ErrCollision = errors.New("blob: object already exists")

// Store клиент объектного хранилища.
type Store struct {
	client     s3iface.S3API
	bucket     string
	publicBase string
}

// New создаёт клиент S3 и убеждается, что бакет существует.
func New(ctx context.Context, cfg config.S3) (*Store, error) {
	const op = "blob.New"

	awsConfig := &aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
		awsConfig.DisableSSL = aws.Bool(cfg.DisableSSL)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	client := s3.New(sess)

	if _, err = client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
		if _, err = client.CreateBucketWithContext(ctx, &s3.CreateBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
			var aerr awserr.Error
			if !errors.As(err, &aerr) || aerr.Code() != s3.ErrCodeBucketAlreadyOwnedByYou {
				return nil, fmt.Errorf("%s: create bucket: %w", op, err)
			}
		}
	}

	return NewWithClient(client, cfg.Bucket, publicBase(cfg)), nil
}

// NewWithClient создаёт Store поверх готового клиента S3.
func NewWithClient(client s3iface.S3API, bucket, publicBase string) *Store {
	return &Store{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimSuffix(publicBase, "/"),
	}
}

func publicBase(cfg config.S3) string {
	if cfg.Endpoint != "" && !strings.Contains(cfg.Endpoint, "amazonaws.com") {
		endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "http://"), "https://")
		protocol := "https"
		if cfg.DisableSSL {
			protocol = "http"
		}
		return fmt.Sprintf("%s://%s/%s", protocol, endpoint, cfg.Bucket)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}

// Put сохраняет объект по ключу и возвращает ссылку на него (сам ключ).
// Без overwrite существующий объект не перезаписывается, возвращается ErrCollision.
func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string, overwrite bool) (string, error) {
	const op = "blob.Put"

	if !overwrite {
		exists, err := s.exists(ctx, key)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		if exists {
			return "", fmt.Errorf("%s: %s: %w", op, key, ErrCollision)
		}
	}

	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return key, nil
}

func (s *Store) exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound {
		return false, nil
	}
	return false, err
}

// PublicURL возвращает публичный адрес объекта.
func (s *Store) PublicURL(ref string) string {
	return s.publicBase + "/" + strings.TrimPrefix(ref, "/")
}

// PresignedURL возвращает временную ссылку на чтение приватного объекта.
func (s *Store) PresignedURL(ref string, ttl time.Duration) (string, error) {
	const op = "blob.PresignedURL"
	req, _ := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	})
	url, err := req.Presign(ttl)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return url, nil
}

// Delete удаляет объект.
func (s *Store) Delete(ctx context.Context, ref string) error {
	const op = "blob.Delete"
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
