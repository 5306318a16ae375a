package models

import (
	"sort"
	"time"
)

// Post represents a blog post.
type Post struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	ImageURL   *string   `json:"image_url"`
	CategoryID uint      `gorm:"not null;index" json:"category_id"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"-"`
	UserID     *uint     `gorm:"index" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"-"`
	Likes      int       `gorm:"not null;default:0" json:"likes"`
	Tags       []Tag     `gorm:"many2many:post_tags" json:"-"`
	// CategoryName and TagNames are not persisted; filled from the preloaded associations.
	CategoryName string    `gorm:"-" json:"category_name"`
	TagNames     []string  `gorm:"-" json:"tags"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Enrich copies the joined category name and tag names into the response fields.
func (p *Post) Enrich() {
	if p.Category != nil {
		p.CategoryName = p.Category.Name
	}
	names := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	p.TagNames = names
}

// PostFilter narrows a post listing. Zero-valued fields do not filter.
type PostFilter struct {
	Text         string
	CategoryName string
	TagName      string
}

// IsEmpty reports whether no filter is set.
func (f PostFilter) IsEmpty() bool {
	return f.Text == "" && f.CategoryName == "" && f.TagName == ""
}
