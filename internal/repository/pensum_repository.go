package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/studypath/studypath-api/internal/models"
)

// likeEscaper neutralises LIKE wildcards using PostgreSQL's default escape
// character.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const pensumColumns = `id, career, title, faculty, version, description, university, terms, electives, progress, is_public, user_id, user_name, created_at, updated_at, deleted_at`

// PensumRepository provides database access for curricula.
type PensumRepository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

// NewPensumRepository creates a new instance of PensumRepository.
func NewPensumRepository(db *sqlx.DB) *PensumRepository {
	return &PensumRepository{db: db, sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)}
}

// Create inserts a new curriculum.
func (r *PensumRepository) Create(ctx context.Context, p *models.Pensum) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Progress == nil {
		p.Progress = models.Progress{}
	}
	if p.Terms == nil {
		p.Terms = models.Terms{}
	}

	const query = `INSERT INTO pensums (id, career, title, faculty, version, description, university, terms, electives, progress, is_public, user_id, user_name, created_at, updated_at) VALUES (:id, :career, :title, :faculty, :version, :description, :university, :terms, :electives, :progress, :is_public, :user_id, :user_name, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("create pensum: %w", err)
	}
	return nil
}

// FindByID returns a live curriculum by identifier.
func (r *PensumRepository) FindByID(ctx context.Context, id string) (*models.Pensum, error) {
	query := `SELECT ` + pensumColumns + ` FROM pensums WHERE id = $1 AND deleted_at IS NULL LIMIT 1`
	var p models.Pensum
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find pensum by id: %w", err)
	}
	return &p, nil
}

// ListByUser returns the owner's curricula, most recently updated first.
func (r *PensumRepository) ListByUser(ctx context.Context, userID string) ([]models.Pensum, error) {
	query := `SELECT ` + pensumColumns + ` FROM pensums WHERE user_id = $1 AND deleted_at IS NULL ORDER BY updated_at DESC`
	var pensums []models.Pensum
	if err := r.db.SelectContext(ctx, &pensums, query, userID); err != nil {
		return nil, fmt.Errorf("list pensums by user: %w", err)
	}
	return pensums, nil
}

// List returns curricula matching filter with the total count.
func (r *PensumRepository) List(ctx context.Context, filter models.PensumFilter) ([]models.Pensum, int, error) {
	where := squirrel.And{squirrel.Eq{"deleted_at": nil}}
	if filter.PublicOnly {
		where = append(where, squirrel.Expr("is_public = TRUE"))
	}
	if filter.UserID != "" {
		where = append(where, squirrel.Eq{"user_id": filter.UserID})
	}
	if filter.VisibleTo != "" {
		where = append(where, squirrel.Or{squirrel.Expr("is_public = TRUE"), squirrel.Eq{"user_id": filter.VisibleTo}})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + likeEscaper.Replace(search) + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"career": pattern},
			squirrel.ILike{"title": pattern},
			squirrel.ILike{"faculty": pattern},
		})
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	listQuery, args, err := r.sb.Select(pensumColumns).From("pensums").Where(where).
		OrderBy("updated_at DESC").
		Limit(uint64(pageSize)).
		Offset(uint64((page - 1) * pageSize)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list pensums query: %w", err)
	}
	var pensums []models.Pensum
	if err := r.db.SelectContext(ctx, &pensums, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list pensums: %w", err)
	}

	countQuery, countArgs, err := r.sb.Select("COUNT(*)").From("pensums").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count pensums query: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count pensums: %w", err)
	}

	return pensums, total, nil
}

// Update replaces the structure and metadata of a curriculum. Progress is
// left untouched.
func (r *PensumRepository) Update(ctx context.Context, p *models.Pensum) error {
	p.UpdatedAt = time.Now().UTC()
	const query = `UPDATE pensums SET career = :career, title = :title, faculty = :faculty, version = :version, description = :description, university = :university, terms = :terms, electives = :electives, is_public = :is_public, updated_at = :updated_at WHERE id = :id AND deleted_at IS NULL`
	res, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return fmt.Errorf("update pensum: %w", err)
	}
	return requireAffected(res)
}

// UpdateProgress replaces the status map wholesale.
func (r *PensumRepository) UpdateProgress(ctx context.Context, id string, progress models.Progress, updatedAt time.Time) error {
	const query = `UPDATE pensums SET progress = $2, updated_at = $3 WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, progress, updatedAt)
	if err != nil {
		return fmt.Errorf("update pensum progress: %w", err)
	}
	return requireAffected(res)
}

// SoftDelete marks a curriculum deleted.
func (r *PensumRepository) SoftDelete(ctx context.Context, id string, deletedAt time.Time) error {
	const query = `UPDATE pensums SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, deletedAt)
	if err != nil {
		return fmt.Errorf("delete pensum: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
