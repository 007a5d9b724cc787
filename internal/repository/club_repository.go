package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/GoormOnlyOne/onlyone-server/internal/model"
)

// ClubRepo provides persistence for clubs and club membership.  A club's
// owner is automatically its first member; membership is required before
// joining any of the club's schedules.
type ClubRepo struct{ db *sql.DB }

func NewClubRepo(db *sql.DB) *ClubRepo { return &ClubRepo{db: db} }

// DB exposes the underlying handle so handlers can begin transactions that
// span multiple repositories.
func (r *ClubRepo) DB() *sql.DB { return r.db }

// Create inserts a club and enrolls the owner as its first member inside a
// single transaction.  It returns the new club's ID.
func (r *ClubRepo) Create(ctx context.Context, name, description string, imageURL *string, ownerID uint64) (uint64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO clubs (name, description, image_url, owner_id) VALUES (?,?,?,?)",
		name, description, imageURL, ownerID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO club_users (club_id, user_id) VALUES (?,?)",
		id, ownerID); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(id), nil
}

// GetByID fetches a single club.  Missing clubs yield sql.ErrNoRows.
func (r *ClubRepo) GetByID(ctx context.Context, id uint64) (model.Club, error) {
	var c model.Club
	var imageURL sql.NullString
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, description, image_url, owner_id, created_at, updated_at FROM clubs WHERE id=?",
		id).Scan(&c.ID, &c.Name, &c.Description, &imageURL, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return c, err
	}
	if imageURL.Valid {
		s := imageURL.String
		c.ImageURL = &s
	}
	return c, nil
}

// List returns all clubs ordered by creation time descending.
func (r *ClubRepo) List(ctx context.Context) ([]model.Club, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, description, image_url, owner_id, created_at, updated_at FROM clubs ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	clubs := make([]model.Club, 0)
	for rows.Next() {
		var c model.Club
		var imageURL sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &imageURL, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if imageURL.Valid {
			s := imageURL.String
			c.ImageURL = &s
		}
		clubs = append(clubs, c)
	}
	return clubs, rows.Err()
}

// AddMember enrolls a user into a club.  Joining twice yields ErrConflict.
func (r *ClubRepo) AddMember(ctx context.Context, clubID, userID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO club_users (club_id, user_id) VALUES (?,?)",
		clubID, userID)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrConflict
	}
	return err
}

// IsMember reports whether the user belongs to the club.
func (r *ClubRepo) IsMember(ctx context.Context, clubID, userID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM club_users WHERE club_id=? AND user_id=? LIMIT 1",
		clubID, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
