package rest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Freskan23/cuentascontrol/internal/domain"
	"github.com/Freskan23/cuentascontrol/internal/service/business"
	"github.com/Freskan23/cuentascontrol/pkg/ctxutil"
)

// businessService defines the minimal interface needed by BusinessHandler.
type businessService interface {
	Create(ctx context.Context, createdBy uuid.UUID, input business.CreateBusinessInput) (domain.Business, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Business, error)
	Update(ctx context.Context, id uuid.UUID, input business.UpdateBusinessInput) (domain.Business, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter domain.BusinessFilter) ([]domain.Business, error)
	ImportCSV(ctx context.Context, createdBy uuid.UUID, r io.Reader) (business.ImportResult, error)
}

// BusinessHandler serves business REST endpoints.
type BusinessHandler struct {
	svc businessService
	log *slog.Logger
}

// NewBusinessHandler creates a BusinessHandler.
func NewBusinessHandler(svc businessService, logger *slog.Logger) *BusinessHandler {
	return &BusinessHandler{svc: svc, log: logger.With("handler", "business")}
}

type createBusinessRequest struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	PostalCode    string `json:"postalCode"`
	City          string `json:"city"`
	Province      string `json:"province"`
	Category      string `json:"category"`
	Sector        string `json:"sector"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Website       string `json:"website"`
	GooglePlaceID string `json:"googlePlaceId"`
	GoogleMapsURL string `json:"googleMapsUrl"`
	ReviewTarget  int    `json:"reviewTarget"`
	Notes         string `json:"notes"`
}

type updateBusinessRequest struct {
	Name          *string `json:"name"`
	Address       *string `json:"address"`
	PostalCode    *string `json:"postalCode"`
	City          *string `json:"city"`
	Province      *string `json:"province"`
	Category      *string `json:"category"`
	Sector        *string `json:"sector"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	Website       *string `json:"website"`
	GooglePlaceID *string `json:"googlePlaceId"`
	GoogleMapsURL *string `json:"googleMapsUrl"`
	ReviewTarget  *int    `json:"reviewTarget"`
	Notes         *string `json:"notes"`
	Active        *bool   `json:"active"`
}

type businessResponse struct {
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	Address        string               `json:"address"`
	PostalCode     string               `json:"postalCode,omitempty"`
	City           string               `json:"city"`
	Province       string               `json:"province"`
	Category       string               `json:"category"`
	Sector         string               `json:"sector"`
	Phone          string               `json:"phone,omitempty"`
	Email          string               `json:"email,omitempty"`
	Website        string               `json:"website,omitempty"`
	GooglePlaceID  string               `json:"googlePlaceId,omitempty"`
	GoogleMapsURL  string               `json:"googleMapsUrl,omitempty"`
	ReviewTarget   int                  `json:"reviewTarget"`
	CurrentReviews int                  `json:"currentReviews"`
	AverageRating  float64              `json:"averageRating"`
	Assignments    []assignmentResponse `json:"assignments,omitempty"`
	RiskLevel      string               `json:"riskLevel"`
	Notes          string               `json:"notes,omitempty"`
	Active         bool                 `json:"active"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

type assignmentResponse struct {
	ID            string     `json:"id"`
	AccountID     string     `json:"accountId"`
	AssignedAt    time.Time  `json:"assignedAt"`
	Status        string     `json:"status"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	Rating        *int       `json:"rating,omitempty"`
	ReviewComment string     `json:"reviewComment,omitempty"`
}

// Create handles POST /businesses.
func (h *BusinessHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createBusinessRequest
	if !decodeBody(w, r, &req) {
		return
	}

	biz, err := h.svc.Create(r.Context(), userID, business.CreateBusinessInput{
		Name:          req.Name,
		Address:       req.Address,
		PostalCode:    req.PostalCode,
		City:          req.City,
		Province:      req.Province,
		Category:      domain.BusinessCategory(req.Category),
		Sector:        domain.Sector(req.Sector),
		Phone:         req.Phone,
		Email:         req.Email,
		Website:       req.Website,
		GooglePlaceID: req.GooglePlaceID,
		GoogleMapsURL: req.GoogleMapsURL,
		ReviewTarget:  req.ReviewTarget,
		Notes:         req.Notes,
	})
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBusinessResponse(biz))
}

// Get handles GET /businesses/{id}.
func (h *BusinessHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	biz, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toBusinessResponse(biz))
}

// Update handles PUT /businesses/{id}.
func (h *BusinessHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req updateBusinessRequest
	if !decodeBody(w, r, &req) {
		return
	}

	input := business.UpdateBusinessInput{
		Name:          req.Name,
		Address:       req.Address,
		PostalCode:    req.PostalCode,
		City:          req.City,
		Province:      req.Province,
		Phone:         req.Phone,
		Email:         req.Email,
		Website:       req.Website,
		GooglePlaceID: req.GooglePlaceID,
		GoogleMapsURL: req.GoogleMapsURL,
		ReviewTarget:  req.ReviewTarget,
		Notes:         req.Notes,
		Active:        req.Active,
	}
	if req.Category != nil {
		c := domain.BusinessCategory(*req.Category)
		input.Category = &c
	}
	if req.Sector != nil {
		s := domain.Sector(*req.Sector)
		input.Sector = &s
	}

	biz, err := h.svc.Update(r.Context(), id, input)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toBusinessResponse(biz))
}

// Delete handles DELETE /businesses/{id}.
func (h *BusinessHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondError(h.log, w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /businesses.
func (h *BusinessHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := domain.BusinessFilter{
		Province: q.Get("province"),
		City:     q.Get("city"),
		Sector:   domain.Sector(q.Get("sector")),
		Category: domain.BusinessCategory(q.Get("category")),
		Search:   q.Get("search"),
		Limit:    queryInt(q.Get("limit"), 50),
		Offset:   queryInt(q.Get("offset"), 0),
	}
	if v := q.Get("active"); v != "" {
		b := v == "true"
		filter.Active = &b
	}

	businesses, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}

	out := make([]businessResponse, 0, len(businesses))
	for _, biz := range businesses {
		out = append(out, toBusinessResponse(biz))
	}

	writeJSON(w, http.StatusOK, out)
}

// Import handles POST /businesses/import. The body is the raw CSV.
func (h *BusinessHandler) Import(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	result, err := h.svc.ImportCSV(r.Context(), userID, r.Body)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}

	out := importResultResponse{Created: result.Created, Skipped: result.Skipped}
	for _, e := range result.Errors {
		out.Errors = append(out.Errors, importErrorResponse{Line: e.Line, Reason: e.Reason})
	}

	writeJSON(w, http.StatusOK, out)
}

// ImportSample handles GET /businesses/import/sample.
func (h *BusinessHandler) ImportSample(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="businesses_sample.csv"`)
	w.Write([]byte(business.SampleCSV())) //nolint:errcheck
}

func toBusinessResponse(b domain.Business) businessResponse {
	resp := businessResponse{
		ID:             b.ID.String(),
		Name:           b.Name,
		Address:        b.Address,
		PostalCode:     b.PostalCode,
		City:           b.City,
		Province:       b.Province,
		Category:       b.Category.String(),
		Sector:         b.Sector.String(),
		Phone:          b.Phone,
		Email:          b.Email,
		Website:        b.Website,
		GooglePlaceID:  b.GooglePlaceID,
		GoogleMapsURL:  b.GoogleMapsURL,
		ReviewTarget:   b.ReviewTarget,
		CurrentReviews: b.CurrentReviews,
		AverageRating:  b.AverageRating,
		RiskLevel:      b.RiskLevel.String(),
		Notes:          b.Notes,
		Active:         b.Active,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
	for _, a := range b.AssignedAccounts {
		resp.Assignments = append(resp.Assignments, assignmentResponse{
			ID:            a.ID.String(),
			AccountID:     a.AccountID.String(),
			AssignedAt:    a.AssignedAt,
			Status:        a.Status.String(),
			CompletedAt:   a.CompletedAt,
			Rating:        a.Rating,
			ReviewComment: a.ReviewComment,
		})
	}
	return resp
}
