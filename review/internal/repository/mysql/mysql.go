package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/abhishek622/movieticket/review/internal/repository"
	"github.com/abhishek622/movieticket/review/pkg/model"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
)

const tracerID = "review-repository-mysql"

const reviewColumns = "id, user_uid, user_name, movie_id, movie_title, release_year, poster_image, review_title, rating, review, created_at, updated_at"

// Repository defines a MySQL-based review and profile repository.
type Repository struct {
	db *sql.DB
}

// New creates a new MySQL-based repository. dsn must enable parseTime and
// clientFoundRows.
func New(dsn string) (*Repository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	return &Repository{db}, nil
}

// Close closes the underlying connection pool.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Create inserts a review owned by callerUID.
func (r *Repository) Create(ctx context.Context, callerUID string, review *model.Review) (string, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/Create")
	defer span.End()

	if callerUID == "" || review.OwnerUserID != callerUID {
		return "", repository.ErrPermission
	}
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO reviews (id, user_uid, user_name, movie_id, movie_title, release_year, poster_image, review_title, rating, review) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		id, review.OwnerUserID, review.OwnerDisplayName, review.MovieID, review.MovieTitle, review.ReleaseYear,
		review.PosterImage, review.ReviewTitle, review.Rating, review.ReviewText)
	if err != nil {
		return "", err
	}
	return id, nil
}

// Update applies patch if callerUID owns the review. The owner check and
// the write run in one transaction holding the row lock.
func (r *Repository) Update(ctx context.Context, callerUID string, id string, patch model.ReviewPatch) error {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/Update")
	defer span.End()

	var sets []string
	var args []any
	if patch.ReviewTitle != nil {
		sets, args = append(sets, "review_title = ?"), append(args, *patch.ReviewTitle)
	}
	if patch.Rating != nil {
		sets, args = append(sets, "rating = ?"), append(args, *patch.Rating)
	}
	if patch.ReviewText != nil {
		sets, args = append(sets, "review = ?"), append(args, *patch.ReviewText)
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)
	return r.withOwner(ctx, callerUID, id, "UPDATE reviews SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
}

// Delete removes the review if callerUID owns it.
func (r *Repository) Delete(ctx context.Context, callerUID string, id string) error {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/Delete")
	defer span.End()

	return r.withOwner(ctx, callerUID, id, "DELETE FROM reviews WHERE id = ?", id)
}

func (r *Repository) withOwner(ctx context.Context, callerUID string, id string, query string, args ...any) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var owner string
	err = tx.QueryRowContext(ctx, "SELECT user_uid FROM reviews WHERE id = ? FOR UPDATE", id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	} else if err != nil {
		return err
	}
	if callerUID == "" || owner != callerUID {
		return repository.ErrPermission
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	return tx.Commit()
}

// Get retrieves a review by id.
func (r *Repository) Get(ctx context.Context, id string) (*model.Review, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/Get")
	defer span.End()

	row := r.db.QueryRowContext(ctx, "SELECT "+reviewColumns+" FROM reviews WHERE id = ?", id)
	rv, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return rv, nil
}

// List returns every review in insertion order.
func (r *Repository) List(ctx context.Context) ([]*model.Review, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/List")
	defer span.End()

	return r.queryReviews(ctx, "SELECT "+reviewColumns+" FROM reviews ORDER BY seq")
}

// ListByOwner returns the reviews owned by uid in insertion order.
func (r *Repository) ListByOwner(ctx context.Context, uid string) ([]*model.Review, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/ListByOwner")
	defer span.End()

	return r.queryReviews(ctx, "SELECT "+reviewColumns+" FROM reviews WHERE user_uid = ? ORDER BY seq", uid)
}

func (r *Repository) queryReviews(ctx context.Context, query string, args ...any) ([]*model.Review, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []*model.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rv)
	}
	return res, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReview(s scanner) (*model.Review, error) {
	var rv model.Review
	if err := s.Scan(&rv.ID, &rv.OwnerUserID, &rv.OwnerDisplayName, &rv.MovieID, &rv.MovieTitle, &rv.ReleaseYear,
		&rv.PosterImage, &rv.ReviewTitle, &rv.Rating, &rv.ReviewText, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
		return nil, err
	}
	return &rv, nil
}

// GetProfile retrieves the profile of uid.
func (r *Repository) GetProfile(ctx context.Context, uid string) (*model.UserProfile, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/GetProfile")
	defer span.End()

	p := model.UserProfile{UID: uid}
	err := r.db.QueryRowContext(ctx,
		"SELECT display_name, biography, email, name, profile_image, provider, role, created_at, updated_at FROM users WHERE uid = ?", uid).
		Scan(&p.DisplayName, &p.Biography, &p.Email, &p.Name, &p.ProfileImage, &p.Provider, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProfile inserts the profile of p.UID.
func (r *Repository) CreateProfile(ctx context.Context, p *model.UserProfile) error {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/CreateProfile")
	defer span.End()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users (uid, display_name, biography, email, name, profile_image, provider, role) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		p.UID, p.DisplayName, p.Biography, p.Email, p.Name, p.ProfileImage, p.Provider, p.Role)
	return err
}

// TouchProfile refreshes the updated_at column of uid's profile.
func (r *Repository) TouchProfile(ctx context.Context, uid string) error {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/TouchProfile")
	defer span.End()

	return r.execOne(ctx, "UPDATE users SET updated_at = CURRENT_TIMESTAMP WHERE uid = ?", uid)
}

// UpdateProfile applies patch to uid's profile.
func (r *Repository) UpdateProfile(ctx context.Context, uid string, patch model.ProfilePatch) error {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/UpdateProfile")
	defer span.End()

	sets := []string{"updated_at = CURRENT_TIMESTAMP"}
	var args []any
	if patch.DisplayName != nil {
		sets, args = append(sets, "display_name = ?"), append(args, *patch.DisplayName)
	}
	if patch.Biography != nil {
		sets, args = append(sets, "biography = ?"), append(args, *patch.Biography)
	}
	return r.execOne(ctx, "UPDATE users SET "+strings.Join(sets, ", ")+" WHERE uid = ?", append(args, uid)...)
}

func (r *Repository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", repository.ErrNotFound, args[len(args)-1])
	}
	return nil
}

// DisplayNameTaken reports whether a profile other than exceptUID uses name.
func (r *Repository) DisplayNameTaken(ctx context.Context, name string, exceptUID string) (bool, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/DisplayNameTaken")
	defer span.End()

	var uid string
	err := r.db.QueryRowContext(ctx, "SELECT uid FROM users WHERE display_name = ? AND uid <> ? LIMIT 1", name, exceptUID).Scan(&uid)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}
