package models

import "time"

// Category groups posts. Posts reference exactly one category.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Tag is a free-form label shared by many posts through post_tags.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// PostTag is the post/tag join row. The composite key collapses duplicate associations.
type PostTag struct {
	PostID uint `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	TagID  uint `gorm:"primaryKey;autoIncrement:false" json:"tag_id"`
}

// TableName returns the join table name shared with Post.Tags.
func (PostTag) TableName() string {
	return "post_tags"
}
