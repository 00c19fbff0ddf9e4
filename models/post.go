package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Post status values.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// ErrDuplicateSlug is returned when another post already uses the same slug on the same publish date.
var ErrDuplicateSlug = errors.New("slug already used for this publish date")

// Post represents a blog article with a draft/published lifecycle.
// The publish timestamp addresses the post's URL; (publish date, slug) is unique.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	Title     string    `gorm:"size:250;not null" json:"title"`
	Slug      string    `gorm:"size:250;index;not null" json:"slug"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Publish   time.Time `gorm:"index;not null" json:"publish"`
	Status    string    `gorm:"size:9;not null;default:'draft'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Comments  []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// BeforeCreate fills defaults: publish falls back to creation time, status to draft.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Publish.IsZero() {
		p.Publish = now
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	return nil
}

// BeforeSave enforces slug uniqueness per publish date, the same way the
// schema treats slugs as unique for their date rather than globally.
func (p *Post) BeforeSave(tx *gorm.DB) error {
	if p.Slug == "" {
		return nil
	}
	publish := p.Publish
	if publish.IsZero() {
		publish = time.Now()
	}
	start, end := DayRange(publish.Year(), int(publish.Month()), publish.Day())
	var count int64
	err := tx.Model(&Post{}).
		Where("slug = ? AND publish >= ? AND publish < ? AND id <> ?", p.Slug, start, end, p.ID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateSlug
	}
	return nil
}

// BeforeUpdate refreshes the UpdatedAt timestamp.
func (p *Post) BeforeUpdate(tx *gorm.DB) error {
	p.UpdatedAt = time.Now()
	return nil
}

// AbsoluteURL returns the canonical path of the post, addressed by publish date and slug.
// Month and day are unpadded.
func (p *Post) AbsoluteURL() string {
	return fmt.Sprintf("/%d/%d/%d/%s", p.Publish.Year(), int(p.Publish.Month()), p.Publish.Day(), p.Slug)
}

// DayRange returns the [start, end) boundaries of a calendar day in local time.
func DayRange(year, month, day int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	return start, start.AddDate(0, 0, 1)
}
