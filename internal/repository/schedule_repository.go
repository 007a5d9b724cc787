package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/GoormOnlyOne/onlyone-server/internal/model"
)

// ScheduleRepo provides persistence for schedules and their participants.
// The creator of a schedule is stored as its LEADER in user_schedules;
// everyone who joins later is a MEMBER.
type ScheduleRepo struct{ db *sql.DB }

func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

// DB exposes the underlying handle so handlers can begin transactions that
// span multiple repositories.
func (r *ScheduleRepo) DB() *sql.DB { return r.db }

// Create inserts a schedule and its leader's participation row inside one
// transaction.  It returns the new schedule's ID.
func (r *ScheduleRepo) Create(ctx context.Context, s *model.Schedule, leaderID uint64) (uint64, error) {
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
		"INSERT INTO schedules (club_id, title, location, cost, capacity, starts_at, status) VALUES (?,?,?,?,?,?,?)",
		s.ClubID, s.Title, s.Location, s.Cost, s.Capacity, s.StartsAt.UTC(), model.ScheduleReady)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO user_schedules (schedule_id, user_id, role) VALUES (?,?,?)",
		id, leaderID, model.RoleLeader); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(id), nil
}

// GetForClub fetches a schedule and verifies it belongs to the given club.
// A schedule under a different club is reported as sql.ErrNoRows so the
// caller cannot probe for ids across clubs.
func (r *ScheduleRepo) GetForClub(ctx context.Context, clubID, scheduleID uint64) (model.Schedule, error) {
	return scanSchedule(r.db.QueryRowContext(ctx,
		"SELECT id, club_id, title, location, cost, capacity, starts_at, status, created_at, updated_at FROM schedules WHERE id=? AND club_id=?",
		scheduleID, clubID))
}

// GetForClubTx is GetForClub within a transaction, locking the schedule row
// so a settlement request and a concurrent join serialize.
func (r *ScheduleRepo) GetForClubTx(ctx context.Context, tx *sql.Tx, clubID, scheduleID uint64) (model.Schedule, error) {
	return scanSchedule(tx.QueryRowContext(ctx,
		"SELECT id, club_id, title, location, cost, capacity, starts_at, status, created_at, updated_at FROM schedules WHERE id=? AND club_id=? FOR UPDATE",
		scheduleID, clubID))
}

type rowScanner interface{ Scan(dest ...any) error }

func scanSchedule(row rowScanner) (model.Schedule, error) {
	var s model.Schedule
	err := row.Scan(&s.ID, &s.ClubID, &s.Title, &s.Location, &s.Cost, &s.Capacity,
		&s.StartsAt, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// ListByClub returns a club's schedules ordered by start time descending.
func (r *ScheduleRepo) ListByClub(ctx context.Context, clubID uint64) ([]model.Schedule, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, club_id, title, location, cost, capacity, starts_at, status, created_at, updated_at FROM schedules WHERE club_id=? ORDER BY starts_at DESC",
		clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	schedules := make([]model.Schedule, 0)
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

// Join adds a user to a READY schedule as a MEMBER.  The schedule row is
// locked for the duration of the capacity check so concurrent joins cannot
// exceed capacity.  Joining twice yields ErrConflict, as does a full or
// already-ended schedule.
func (r *ScheduleRepo) Join(ctx context.Context, scheduleID, userID uint64, joinedAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var status string
	var capacity uint32
	if err := tx.QueryRowContext(ctx,
		"SELECT status, capacity FROM schedules WHERE id=? FOR UPDATE",
		scheduleID).Scan(&status, &capacity); err != nil {
		return err
	}
	if status != model.ScheduleReady {
		return ErrConflict
	}
	if capacity > 0 {
		var count uint32
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM user_schedules WHERE schedule_id=?",
			scheduleID).Scan(&count); err != nil {
			return err
		}
		if count >= capacity {
			return ErrConflict
		}
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO user_schedules (schedule_id, user_id, role, joined_at) VALUES (?,?,?,?)",
		scheduleID, userID, model.RoleMember, joinedAt.UTC()); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// RoleOfTx returns the caller's role within a schedule, or sql.ErrNoRows
// when the user is not a participant.
func (r *ScheduleRepo) RoleOfTx(ctx context.Context, tx *sql.Tx, scheduleID, userID uint64) (string, error) {
	var role string
	err := tx.QueryRowContext(ctx,
		"SELECT role FROM user_schedules WHERE schedule_id=? AND user_id=? LIMIT 1",
		scheduleID, userID).Scan(&role)
	return role, err
}

// ParticipantIDsTx returns the user ids of every participant of a schedule
// within the given transaction, leader included, ordered by join time.
func (r *ScheduleRepo) ParticipantIDsTx(ctx context.Context, tx *sql.Tx, scheduleID uint64) ([]uint64, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT user_id FROM user_schedules WHERE schedule_id=? ORDER BY joined_at, id",
		scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateStatusTx moves a schedule to the given status within a transaction.
func (r *ScheduleRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, scheduleID uint64, status string) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE schedules SET status=? WHERE id=?",
		status, scheduleID)
	return err
}
