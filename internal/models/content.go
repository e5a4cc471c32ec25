package models

import "time"

// Content опубликованная единица контента.
type Content struct {
	ID           string    `json:"id"`
	CreatorID    string    `json:"creator_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	PriceCents   int64     `json:"price_cents"`
	FileRef      string    `json:"file_ref"`
	ThumbnailRef string    `json:"thumbnail_ref"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Upload загруженный файл с объявленным расширением.
type Upload struct {
	Ext         string
	ContentType string
	Data        []byte
}

// Empty сообщает, что файл не передан.
func (u *Upload) Empty() bool {
	return u == nil || len(u.Data) == 0
}

// CreateContentRequest данные для публикации контента.
type CreateContentRequest struct {
	Title       string
	Description string
	PriceCents  *int64
	File        *Upload
	Thumbnail   *Upload
}
