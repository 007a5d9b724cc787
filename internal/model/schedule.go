package model

import "time"

// Schedule status values.  READY schedules accept participants; a schedule
// becomes ENDED when its settlement is requested and CLOSED once the
// settlement completes (or immediately when there is nothing to settle).
// A CLOSED schedule is immutable.
const (
	ScheduleReady  = "READY"
	ScheduleEnded  = "ENDED"
	ScheduleClosed = "CLOSED"
)

// Roles a user can hold within a schedule.  The creator of a schedule is
// its LEADER; everyone who joins afterwards is a MEMBER.
const (
	RoleLeader = "LEADER"
	RoleMember = "MEMBER"
)

// Schedule is a single dated meetup owned by a club.  Cost is the per-head
// amount in KRW that participants owe the leader after the meetup.
type Schedule struct {
	ID        uint64    // schedules.id
	ClubID    uint64    // schedules.club_id
	Title     string    // schedules.title
	Location  string    // schedules.location
	Cost      int64     // schedules.cost (per-head, KRW)
	Capacity  uint32    // schedules.capacity (0 = unlimited)
	StartsAt  time.Time // schedules.starts_at (UTC)
	Status    string    // schedules.status (READY|ENDED|CLOSED)
	CreatedAt time.Time // schedules.created_at
	UpdatedAt time.Time // schedules.updated_at
}

// UserSchedule is the participation of one user in one schedule.
type UserSchedule struct {
	ID         uint64    // user_schedules.id
	ScheduleID uint64    // user_schedules.schedule_id
	UserID     uint64    // user_schedules.user_id
	Role       string    // user_schedules.role (LEADER|MEMBER)
	JoinedAt   time.Time // user_schedules.joined_at
}
