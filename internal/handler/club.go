package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/GoormOnlyOne/onlyone-server/internal/apperr"
	"github.com/GoormOnlyOne/onlyone-server/internal/model"
	"github.com/GoormOnlyOne/onlyone-server/internal/repository"
)

// ClubHandler serves club creation, listing and membership.
type ClubHandler struct {
	Clubs *repository.ClubRepo
}

func NewClubHandler(clubs *repository.ClubRepo) *ClubHandler {
	return &ClubHandler{Clubs: clubs}
}

type createClubReq struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Description string  `json:"description" validate:"max=500"`
	ImageURL    *string `json:"imageUrl" validate:"omitempty,url"`
}

type clubResp struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	OwnerID     uint64    `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toClubResp(c model.Club) clubResp {
	return clubResp{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		OwnerID:     c.OwnerID,
		CreatedAt:   c.CreatedAt,
	}
}

// Create makes a club owned by the caller; the owner joins automatically.
func (h *ClubHandler) Create(c echo.Context) error {
	var req createClubReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.New(apperr.KindInvalidInput, "INVALID_INPUT", "invalid body"))
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	id, err := h.Clubs.Create(ctx, req.Name, req.Description, req.ImageURL, userID(c))
	if err != nil {
		return respondError(c, err)
	}
	club, err := h.Clubs.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toClubResp(club))
}

// List returns every club.
func (h *ClubHandler) List(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	clubs, err := h.Clubs.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	resp := make([]clubResp, 0, len(clubs))
	for _, club := range clubs {
		resp = append(resp, toClubResp(club))
	}
	return c.JSON(http.StatusOK, resp)
}

// Join enrolls the caller into a club.
func (h *ClubHandler) Join(c echo.Context) error {
	clubID := pathID(c, "clubId")
	if clubID == 0 {
		return respondError(c, apperr.New(apperr.KindInvalidInput, "INVALID_INPUT", "invalid club id"))
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if _, err := h.Clubs.GetByID(ctx, clubID); err != nil {
		if err == sql.ErrNoRows {
			return respondError(c, apperr.New(apperr.KindNotFound, "CLUB_NOT_FOUND", "club not found"))
		}
		return respondError(c, err)
	}
	if err := h.Clubs.AddMember(ctx, clubID, userID(c)); err != nil {
		if err == repository.ErrConflict {
			return respondError(c, apperr.New(apperr.KindInvalidState, "ALREADY_MEMBER", "already a member of this club"))
		}
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"joined": true})
}
