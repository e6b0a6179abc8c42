package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/hemantwpdev/post-sync-translate/internal/model"
)

type TermRepo struct {
	db *sql.DB
}

func NewTermRepo(db *sql.DB) *TermRepo {
	return &TermRepo{db: db}
}

func (r *TermRepo) FindOrCreate(ctx context.Context, name, taxonomy string) (int64, error) {
	where := map[string]interface{}{"name": name, "taxonomy": taxonomy}
	sqlStr, args, err := builder.BuildSelect("terms", where, []string{"id"})
	if err != nil {
		return 0, err
	}
	var id int64
	err = r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}
	data := map[string]interface{}{"name": name, "taxonomy": taxonomy}
	sqlStr, args, err = builder.BuildInsert("terms", []map[string]interface{}{data})
	if err != nil {
		return 0, err
	}
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// SetPostTerms replaces the post's term set for one taxonomy; it is not
// additive, matching the host's state exactly.
func (r *TermRepo) SetPostTerms(ctx context.Context, postID int64, termIDs []int64, taxonomy string) error {
	sqlStr, args, err := builder.BuildDelete("post_terms", map[string]interface{}{
		"post_id":  postID,
		"taxonomy": taxonomy,
	})
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return err
	}
	if len(termIDs) == 0 {
		return nil
	}
	rows := make([]map[string]interface{}, 0, len(termIDs))
	for _, termID := range termIDs {
		rows = append(rows, map[string]interface{}{
			"post_id":  postID,
			"term_id":  termID,
			"taxonomy": taxonomy,
		})
	}
	sqlStr, args, err = builder.BuildInsert("post_terms", rows)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *TermRepo) ListNames(ctx context.Context, postID int64, taxonomy string) ([]string, error) {
	sqlStr := "SELECT t.name FROM terms t JOIN post_terms pt ON pt.term_id = t.id " +
		"WHERE pt.post_id = ? AND pt.taxonomy = ? ORDER BY t.id"
	rows, err := r.db.QueryContext(ctx, sqlStr, postID, taxonomy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *TermRepo) ListByTaxonomy(ctx context.Context, taxonomy string) ([]model.Term, error) {
	where := map[string]interface{}{"taxonomy": taxonomy, "_orderby": "name asc"}
	sqlStr, args, err := builder.BuildSelect("terms", where, []string{"id", "name", "taxonomy"})
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	terms := make([]model.Term, 0)
	for rows.Next() {
		var term model.Term
		if err := rows.Scan(&term.ID, &term.Name, &term.Taxonomy); err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return terms, rows.Err()
}
