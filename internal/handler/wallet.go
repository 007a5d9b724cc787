package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/GoormOnlyOne/onlyone-server/internal/apperr"
	"github.com/GoormOnlyOne/onlyone-server/internal/model"
	"github.com/GoormOnlyOne/onlyone-server/internal/repository"
)

// WalletHandler serves the wallet balance and transaction history.
type WalletHandler struct {
	Wallets *repository.WalletRepo
}

func NewWalletHandler(w *repository.WalletRepo) *WalletHandler {
	return &WalletHandler{Wallets: w}
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type historyItem struct {
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	MainImage *string   `json:"mainImage,omitempty"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
}

type historyResp struct {
	Balance int64         `json:"balance"`
	Page    int           `json:"page"`
	Size    int           `json:"size"`
	Items   []historyItem `json:"items"`
}

// History returns a page of the caller's ledger, newest first.  The filter
// narrows by entry type: CHARGE for top-ups, TRANSACTION for settlement
// transfers, ALL (default) for both.
func (h *WalletHandler) History(c echo.Context) error {
	filter := strings.ToUpper(strings.TrimSpace(c.QueryParam("filter")))
	if filter == "" {
		filter = repository.FilterAll
	}
	switch filter {
	case repository.FilterAll, repository.FilterCharge, repository.FilterTransaction:
	default:
		return respondError(c, apperr.New(apperr.KindInvalidInput, "INVALID_FILTER", "filter must be ALL, CHARGE or TRANSACTION"))
	}

	page := queryInt(c, "page", 0)
	size := queryInt(c, "size", defaultPageSize)
	if page < 0 || size < 1 {
		return respondError(c, apperr.New(apperr.KindInvalidInput, "INVALID_PAGE", "page must be >= 0 and size >= 1"))
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	balance, entries, err := h.Wallets.History(ctx, userID(c), filter, page, size)
	if err != nil {
		return respondError(c, err)
	}

	items := make([]historyItem, 0, len(entries))
	for _, e := range entries {
		item := historyItem{
			Type:      e.Transaction.Type,
			Status:    e.Transaction.Status,
			Amount:    e.Transaction.Amount,
			CreatedAt: e.Transaction.CreatedAt,
			MainImage: e.ClubImage,
		}
		switch {
		case e.Transaction.Type == model.TxCharge:
			item.Title = "Wallet top-up"
		case e.ScheduleTitle != nil:
			item.Title = *e.ScheduleTitle
		default:
			item.Title = "Settlement transfer"
		}
		items = append(items, item)
	}
	return c.JSON(http.StatusOK, historyResp{Balance: balance, Page: page, Size: size, Items: items})
}

func queryInt(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}
