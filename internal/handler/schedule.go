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

// ScheduleHandler serves schedule creation, listing and participation.
type ScheduleHandler struct {
	Clubs     *repository.ClubRepo
	Schedules *repository.ScheduleRepo
}

func NewScheduleHandler(clubs *repository.ClubRepo, schedules *repository.ScheduleRepo) *ScheduleHandler {
	return &ScheduleHandler{Clubs: clubs, Schedules: schedules}
}

type createScheduleReq struct {
	Title    string    `json:"title" validate:"required,min=2,max=100"`
	Location string    `json:"location" validate:"max=255"`
	Cost     int64     `json:"cost" validate:"min=0"`
	Capacity uint32    `json:"capacity" validate:"min=0"`
	StartsAt time.Time `json:"startsAt" validate:"required"`
}

type scheduleResp struct {
	ID       uint64    `json:"id"`
	ClubID   uint64    `json:"clubId"`
	Title    string    `json:"title"`
	Location string    `json:"location"`
	Cost     int64     `json:"cost"`
	Capacity uint32    `json:"capacity"`
	StartsAt time.Time `json:"startsAt"`
	Status   string    `json:"status"`
}

func toScheduleResp(s model.Schedule) scheduleResp {
	return scheduleResp{
		ID:       s.ID,
		ClubID:   s.ClubID,
		Title:    s.Title,
		Location: s.Location,
		Cost:     s.Cost,
		Capacity: s.Capacity,
		StartsAt: s.StartsAt,
		Status:   s.Status,
	}
}

// requireMembership loads the club and checks the caller belongs to it.
func (h *ScheduleHandler) requireMembership(c echo.Context, clubID uint64) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	if _, err := h.Clubs.GetByID(ctx, clubID); err != nil {
		if err == sql.ErrNoRows {
			return apperr.New(apperr.KindNotFound, "CLUB_NOT_FOUND", "club not found")
		}
		return err
	}
	member, err := h.Clubs.IsMember(ctx, clubID, userID(c))
	if err != nil {
		return err
	}
	if !member {
		return apperr.New(apperr.KindPermissionDenied, "NOT_A_MEMBER", "join the club first")
	}
	return nil
}

// Create makes a schedule in a club; the creator becomes its LEADER.
func (h *ScheduleHandler) Create(c echo.Context) error {
	clubID := pathID(c, "clubId")
	if clubID == 0 {
		return respondError(c, apperr.New(apperr.KindInvalidInput, "INVALID_INPUT", "invalid club id"))
	}
	var req createScheduleReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.New(apperr.KindInvalidInput, "INVALID_INPUT", "invalid body"))
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}
	if err := h.requireMembership(c, clubID); err != nil {
		return respondError(c, err)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	s := &model.Schedule{
		ClubID:   clubID,
		Title:    req.Title,
		Location: req.Location,
		Cost:     req.Cost,
		Capacity: req.Capacity,
		StartsAt: req.StartsAt,
	}
	id, err := h.Schedules.Create(ctx, s, userID(c))
	if err != nil {
		return respondError(c, err)
	}
	created, err := h.Schedules.GetForClub(ctx, clubID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toScheduleResp(created))
}

// List returns a club's schedules.
func (h *ScheduleHandler) List(c echo.Context) error {
	clubID := pathID(c, "clubId")
	if clubID == 0 {
		return respondError(c, apperr.New(apperr.KindInvalidInput, "INVALID_INPUT", "invalid club id"))
	}
	if err := h.requireMembership(c, clubID); err != nil {
		return respondError(c, err)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	schedules, err := h.Schedules.ListByClub(ctx, clubID)
	if err != nil {
		return respondError(c, err)
	}
	resp := make([]scheduleResp, 0, len(schedules))
	for _, s := range schedules {
		resp = append(resp, toScheduleResp(s))
	}
	return c.JSON(http.StatusOK, resp)
}

// Join adds the caller to a schedule as a MEMBER.
func (h *ScheduleHandler) Join(c echo.Context) error {
	clubID := pathID(c, "clubId")
	scheduleID := pathID(c, "scheduleId")
	if clubID == 0 || scheduleID == 0 {
		return respondError(c, apperr.New(apperr.KindInvalidInput, "INVALID_INPUT", "invalid path parameters"))
	}
	if err := h.requireMembership(c, clubID); err != nil {
		return respondError(c, err)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if _, err := h.Schedules.GetForClub(ctx, clubID, scheduleID); err != nil {
		if err == sql.ErrNoRows {
			return respondError(c, apperr.New(apperr.KindNotFound, "SCHEDULE_NOT_FOUND", "schedule not found"))
		}
		return respondError(c, err)
	}
	if err := h.Schedules.Join(ctx, scheduleID, userID(c), time.Now().UTC()); err != nil {
		if err == repository.ErrConflict {
			return respondError(c, apperr.New(apperr.KindInvalidState, "CANNOT_JOIN", "schedule is full, closed, or already joined"))
		}
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"joined": true})
}
