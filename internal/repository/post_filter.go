package repository

import (
	"strings"

	"inkwell/internal/models"

	sq "github.com/Masterminds/squirrel"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildPostFilter turns a PostFilter into a WHERE fragment over posts with "?" placeholders.
// An empty filter yields an empty fragment.
func buildPostFilter(f models.PostFilter) (string, []interface{}, error) {
	conds := sq.And{}

	if text := strings.TrimSpace(f.Text); text != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(text)) + "%"
		conds = append(conds, sq.Or{
			sq.Expr(`LOWER(posts.title) LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`LOWER(posts.content) LIKE ? ESCAPE '\'`, pattern),
		})
	}

	if category := strings.TrimSpace(f.CategoryName); category != "" {
		conds = append(conds, sq.Expr(
			"posts.category_id IN (SELECT categories.id FROM categories WHERE categories.name = ?)",
			category,
		))
	}

	if tag := strings.TrimSpace(f.TagName); tag != "" {
		conds = append(conds, sq.Expr(
			"EXISTS (SELECT 1 FROM post_tags JOIN tags ON tags.id = post_tags.tag_id"+
				" WHERE post_tags.post_id = posts.id AND tags.name = ?)",
			tag,
		))
	}

	if len(conds) == 0 {
		return "", nil, nil
	}
	return conds.ToSql()
}
