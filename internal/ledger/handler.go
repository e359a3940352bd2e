package ledger

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
	"github.com/meridian-erp/meridian-erp/internal/registry/heads"
	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// Handler wires the voucher endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers voucher routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/vouchers", h.query)
	r.Post("/vouchers", h.create)
	r.Get("/vouchers/stats", h.stats)
	r.Get("/vouchers/{id}", h.get)
	r.Patch("/vouchers/{id}", h.update)
	r.Post("/vouchers/bulk-delete", h.bulkDelete)
	r.Get("/heads/{id}/balance", h.headBalance)
}

type headRefPayload struct {
	Kind string `json:"kind" validate:"required,oneof=income expense bank others"`
	ID   string `json:"id" validate:"required,uuid4"`
}

type createVoucherRequest struct {
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`
	VoucherType string          `json:"voucher_type" validate:"required"`
	PartyID     *string         `json:"party_id" validate:"omitempty,uuid4"`
	FromHead    headRefPayload  `json:"from_head" validate:"required"`
	ToHead      *headRefPayload `json:"to_head"`
	Description string          `json:"description"`
	Amount      string          `json:"amount" validate:"required"`
	CreatedBy   string          `json:"created_by"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createVoucherRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Argument", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Argument", err.Error())
		return
	}
	input, err := req.toInput()
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	voucher, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.logger.Warn("create voucher", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, voucher)
}

func (req createVoucherRequest) toInput() (CreateInput, error) {
	date, err := ParseDate(req.Date)
	if err != nil {
		return CreateInput{}, shared.InvalidArgument("date", "date must be YYYY-MM-DD")
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return CreateInput{}, shared.InvalidArgument("amount", "amount must be a decimal number")
	}
	fromID, err := uuid.Parse(req.FromHead.ID)
	if err != nil {
		return CreateInput{}, shared.InvalidArgument("fromHeadId", "malformed head id")
	}
	input := CreateInput{
		Date:        date,
		Type:        VoucherType(req.VoucherType),
		From:        HeadRef{Kind: heads.Kind(req.FromHead.Kind), ID: fromID},
		Description: req.Description,
		Amount:      amount,
		CreatedBy:   req.CreatedBy,
	}
	if req.ToHead != nil {
		toID, err := uuid.Parse(req.ToHead.ID)
		if err != nil {
			return CreateInput{}, shared.InvalidArgument("toHeadId", "malformed head id")
		}
		input.To = &HeadRef{Kind: heads.Kind(req.ToHead.Kind), ID: toID}
	}
	if req.PartyID != nil {
		partyID, err := uuid.Parse(*req.PartyID)
		if err != nil {
			return CreateInput{}, shared.InvalidArgument("partyId", "malformed party id")
		}
		input.PartyID = &partyID
	}
	return input, nil
}

type updateVoucherRequest struct {
	Date        *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Description *string `json:"description"`
	Amount      *string `json:"amount"`
	PartyID     *string `json:"party_id" validate:"omitempty,uuid4"`
	VoucherType *string `json:"voucher_type"`
	FromHeadID  *string `json:"from_head_id" validate:"omitempty,uuid4"`
	ToHeadID    *string `json:"to_head_id" validate:"omitempty,uuid4"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Argument", "malformed voucher id")
		return
	}
	var req updateVoucherRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Argument", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Argument", err.Error())
		return
	}
	input := UpdateInput{Description: req.Description}
	if req.Date != nil {
		date, err := ParseDate(*req.Date)
		if err != nil {
			httpx.RespondError(w, shared.InvalidArgument("date", "date must be YYYY-MM-DD"))
			return
		}
		input.Date = &date
	}
	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			httpx.RespondError(w, shared.InvalidArgument("amount", "amount must be a decimal number"))
			return
		}
		input.Amount = &amount
	}
	if req.PartyID != nil {
		partyID, err := uuid.Parse(*req.PartyID)
		if err != nil {
			httpx.RespondError(w, shared.InvalidArgument("partyId", "malformed party id"))
			return
		}
		input.PartyID = &partyID
	}
	if req.VoucherType != nil {
		t := VoucherType(*req.VoucherType)
		input.Type = &t
	}
	if req.FromHeadID != nil {
		fromID, err := uuid.Parse(*req.FromHeadID)
		if err != nil {
			httpx.RespondError(w, shared.InvalidArgument("fromHeadId", "malformed head id"))
			return
		}
		input.FromHeadID = &fromID
	}
	if req.ToHeadID != nil {
		toID, err := uuid.Parse(*req.ToHeadID)
		if err != nil {
			httpx.RespondError(w, shared.InvalidArgument("toHeadId", "malformed head id"))
			return
		}
		input.ToHeadID = &toID
	}
	voucher, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.logger.Warn("update voucher", slog.String("id", id.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, voucher)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Argument", "malformed voucher id")
		return
	}
	voucher, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, voucher)
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid4"`
}

func (h *Handler) bulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Argument", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Argument", err.Error())
		return
	}
	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.RespondError(w, shared.InvalidArgument("ids", "malformed voucher id"))
			return
		}
		ids = append(ids, id)
	}
	result, err := h.service.SoftDelete(r.Context(), ids)
	if err != nil {
		h.logger.Error("bulk delete vouchers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) query(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	result, err := h.service.Query(r.Context(), filter, page, perPage)
	if err != nil {
		h.logger.Error("query vouchers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	stats, err := h.service.Stats(r.Context(), filter)
	if err != nil {
		h.logger.Error("compute stats", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) headBalance(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Argument", "malformed head id")
		return
	}
	balance, err := h.service.HeadBalance(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"head_id": id, "balance": balance})
}

func filterFromQuery(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	var f Filter
	if raw := q.Get("from_date"); raw != "" {
		date, err := ParseDate(raw)
		if err != nil {
			return Filter{}, shared.InvalidArgument("fromDate", "date must be YYYY-MM-DD")
		}
		f.FromDate = &date
	}
	if raw := q.Get("to_date"); raw != "" {
		date, err := ParseDate(raw)
		if err != nil {
			return Filter{}, shared.InvalidArgument("toDate", "date must be YYYY-MM-DD")
		}
		f.ToDate = &date
	}
	if raw := q.Get("voucher_type"); raw != "" {
		t := VoucherType(raw)
		if !t.Valid() {
			return Filter{}, shared.InvalidArgument("voucherType", "unknown voucher type")
		}
		f.Type = &t
	}
	if raw := q.Get("head_kind"); raw != "" {
		kind := heads.Kind(raw)
		if !kind.Valid() {
			return Filter{}, shared.InvalidArgument("headType", "unknown head kind")
		}
		f.HeadKind = &kind
	}
	if raw := q.Get("head_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return Filter{}, shared.InvalidArgument("headId", "malformed head id")
		}
		f.HeadID = &id
	}
	if raw := q.Get("party_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return Filter{}, shared.InvalidArgument("partyId", "malformed party id")
		}
		f.PartyID = &id
	}
	if raw := q.Get("status"); raw != "" {
		status := VoucherStatus(raw)
		if status != StatusActive && status != StatusInactive {
			return Filter{}, shared.InvalidArgument("status", "status must be active or inactive")
		}
		f.Status = &status
	}
	f.Search = q.Get("search")
	return f, nil
}
