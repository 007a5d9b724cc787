package model

import "time"

// Club is a group of users that schedules meetups together.
type Club struct {
	ID          uint64    // clubs.id
	Name        string    // clubs.name
	Description string    // clubs.description
	ImageURL    *string   // clubs.image_url (nullable)
	OwnerID     uint64    // clubs.owner_id
	CreatedAt   time.Time // clubs.created_at
	UpdatedAt   time.Time // clubs.updated_at
}

// ClubUser is the membership of one user in one club.
type ClubUser struct {
	ID       uint64    // club_users.id
	ClubID   uint64    // club_users.club_id
	UserID   uint64    // club_users.user_id
	JoinedAt time.Time // club_users.joined_at
}
