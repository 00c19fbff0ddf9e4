package models

import "gorm.io/gorm"

// PublishedPosts returns every published post, newest publish date first.
func PublishedPosts(db *gorm.DB) ([]Post, error) {
	var posts []Post
	err := db.Where("status = ?", StatusPublished).Order("publish DESC").Find(&posts).Error
	return posts, err
}

// ActiveComments returns the visible comments of a post, oldest first.
func ActiveComments(db *gorm.DB, post *Post) ([]Comment, error) {
	var comments []Comment
	err := db.Where("post_id = ? AND active = ?", post.ID, true).Order("created_at ASC").Find(&comments).Error
	return comments, err
}

// PublishedPostByDate looks up one published post by its publish date and slug.
// Returns gorm.ErrRecordNotFound when no post matches every component.
func PublishedPostByDate(db *gorm.DB, year, month, day int, slug string) (*Post, error) {
	start, end := DayRange(year, month, day)
	var post Post
	err := db.Where("slug = ? AND status = ? AND publish >= ? AND publish < ?", slug, StatusPublished, start, end).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// PublishedPostByID looks up one published post by primary key.
func PublishedPostByID(db *gorm.DB, id uint) (*Post, error) {
	var post Post
	err := db.Where("id = ? AND status = ?", id, StatusPublished).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// PostsByAuthor returns an author's posts in any status, newest first.
func PostsByAuthor(db *gorm.DB, authorID uint) ([]Post, error) {
	var posts []Post
	err := db.Where("author_id = ?", authorID).Order("publish DESC").Find(&posts).Error
	return posts, err
}
