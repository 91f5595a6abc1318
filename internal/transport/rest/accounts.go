package rest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Freskan23/cuentascontrol/internal/domain"
	"github.com/Freskan23/cuentascontrol/internal/service/account"
	"github.com/Freskan23/cuentascontrol/pkg/ctxutil"
)

// accountService defines the minimal interface needed by AccountHandler.
type accountService interface {
	Create(ctx context.Context, input account.CreateAccountInput) (domain.Account, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Account, error)
	Update(ctx context.Context, id uuid.UUID, input account.UpdateAccountInput) (domain.Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error)
	AddTrafficPattern(ctx context.Context, input account.AddTrafficPatternInput) (domain.TrafficPattern, error)
	ImportCSV(ctx context.Context, ownerID uuid.UUID, r io.Reader) (account.ImportResult, error)
}

// AccountHandler serves account REST endpoints.
type AccountHandler struct {
	svc accountService
	log *slog.Logger
}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler(svc accountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{svc: svc, log: logger.With("handler", "account")}
}

type createAccountRequest struct {
	Email      string `json:"email"`
	Province   string `json:"province"`
	City       string `json:"city"`
	Comments   string `json:"comments"`
	IP         string `json:"ip"`
	Emulator   string `json:"emulator"`
	DeviceType string `json:"deviceType"`
}

type updateAccountRequest struct {
	Province   *string `json:"province"`
	City       *string `json:"city"`
	Available  *bool   `json:"available"`
	Blocked    *bool   `json:"blocked"`
	UsedInSAB  *bool   `json:"usedInSab"`
	Comments   *string `json:"comments"`
	IP         *string `json:"ip"`
	Emulator   *string `json:"emulator"`
	DeviceType *string `json:"deviceType"`
}

type addTrafficPatternRequest struct {
	BusinessID string     `json:"businessId"`
	Frequency  string     `json:"frequency"`
	Type       string     `json:"type"`
	StartDate  time.Time  `json:"startDate"`
	EndDate    *time.Time `json:"endDate"`
}

type accountResponse struct {
	ID              string                   `json:"id"`
	Email           string                   `json:"email"`
	OwnerID         string                   `json:"ownerId"`
	Province        string                   `json:"province"`
	City            string                   `json:"city"`
	LastReviewDate  *time.Time               `json:"lastReviewDate,omitempty"`
	UsedInSAB       bool                     `json:"usedInSab"`
	Available       bool                     `json:"available"`
	Blocked         bool                     `json:"blocked"`
	InCooldown      bool                     `json:"inCooldown"`
	CooldownEnd     *time.Time               `json:"cooldownEndDate,omitempty"`
	Comments        string                   `json:"comments,omitempty"`
	IP              string                   `json:"ip,omitempty"`
	Emulator        string                   `json:"emulator,omitempty"`
	DeviceType      string                   `json:"deviceType"`
	RiskLevel       string                   `json:"riskLevel"`
	RiskReason      string                   `json:"riskReason,omitempty"`
	UsageHistory    []usageEntryResponse     `json:"usageHistory,omitempty"`
	TrafficPatterns []trafficPatternResponse `json:"trafficPatterns,omitempty"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

type usageEntryResponse struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"businessId"`
	UsedAt     time.Time `json:"usedAt"`
	Province   string    `json:"province"`
	City       string    `json:"city"`
	Activity   string    `json:"activity"`
	Notes      string    `json:"notes,omitempty"`
}

type trafficPatternResponse struct {
	ID         string     `json:"id"`
	BusinessID string     `json:"businessId"`
	Frequency  string     `json:"frequency"`
	Type       string     `json:"type"`
	Active     bool       `json:"active"`
	StartDate  time.Time  `json:"startDate"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	LastSent   *time.Time `json:"lastSent,omitempty"`
	NextSent   *time.Time `json:"nextSent,omitempty"`
}

type importResultResponse struct {
	Created int                   `json:"created"`
	Skipped int                   `json:"skipped"`
	Errors  []importErrorResponse `json:"errors,omitempty"`
}

type importErrorResponse struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Create handles POST /accounts.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createAccountRequest
	if !decodeBody(w, r, &req) {
		return
	}

	acc, err := h.svc.Create(r.Context(), account.CreateAccountInput{
		Email:      req.Email,
		OwnerID:    ownerID,
		Province:   req.Province,
		City:       req.City,
		Comments:   req.Comments,
		IP:         req.IP,
		Emulator:   req.Emulator,
		DeviceType: domain.DeviceType(req.DeviceType),
	})
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAccountResponse(acc))
}

// Get handles GET /accounts/{id}.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	acc, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}
	if !canAccess(r.Context(), acc.OwnerID) {
		respondError(h.log, w, r, domain.ErrForbidden)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(acc))
}

// Update handles PUT /accounts/{id}.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if !h.authorizeOwner(w, r, id) {
		return
	}

	var req updateAccountRequest
	if !decodeBody(w, r, &req) {
		return
	}

	input := account.UpdateAccountInput{
		Province:  req.Province,
		City:      req.City,
		Available: req.Available,
		Blocked:   req.Blocked,
		UsedInSAB: req.UsedInSAB,
		Comments:  req.Comments,
		IP:        req.IP,
		Emulator:  req.Emulator,
	}
	if req.DeviceType != nil {
		dt := domain.DeviceType(*req.DeviceType)
		input.DeviceType = &dt
	}

	acc, err := h.svc.Update(r.Context(), id, input)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(acc))
}

// Delete handles DELETE /accounts/{id}.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if !h.authorizeOwner(w, r, id) {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondError(h.log, w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := domain.AccountFilter{
		Province: q.Get("province"),
		City:     q.Get("city"),
		Search:   q.Get("search"),
		Limit:    queryInt(q.Get("limit"), 50),
		Offset:   queryInt(q.Get("offset"), 0),
	}
	if v := q.Get("available"); v != "" {
		b := v == "true"
		filter.Available = &b
	}
	if v := q.Get("blocked"); v != "" {
		b := v == "true"
		filter.Blocked = &b
	}
	if v := q.Get("inCooldown"); v != "" {
		b := v == "true"
		filter.InCooldown = &b
	}
	if v := q.Get("ownerId"); v != "" {
		ownerID, err := uuid.Parse(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid ownerId")
			return
		}
		filter.OwnerID = &ownerID
	}

	// Non-admins only ever see their own accounts.
	if !isAdmin(r.Context()) {
		userID, ok := ctxutil.UserIDFromCtx(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		filter.OwnerID = &userID
	}

	accounts, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}

	out := make([]accountResponse, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, toAccountResponse(acc))
	}

	writeJSON(w, http.StatusOK, out)
}

// AddTrafficPattern handles POST /accounts/{id}/traffic-patterns.
func (h *AccountHandler) AddTrafficPattern(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if !h.authorizeOwner(w, r, id) {
		return
	}

	var req addTrafficPatternRequest
	if !decodeBody(w, r, &req) {
		return
	}

	businessID, err := uuid.Parse(req.BusinessID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid businessId")
		return
	}

	pattern, err := h.svc.AddTrafficPattern(r.Context(), account.AddTrafficPatternInput{
		AccountID:  id,
		BusinessID: businessID,
		Frequency:  domain.TrafficFrequency(req.Frequency),
		Type:       domain.TrafficType(req.Type),
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
	})
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTrafficPatternResponse(pattern))
}

// Import handles POST /accounts/import. The body is the raw CSV.
func (h *AccountHandler) Import(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	result, err := h.svc.ImportCSV(r.Context(), ownerID, r.Body)
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

// ImportSample handles GET /accounts/import/sample.
func (h *AccountHandler) ImportSample(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="accounts_sample.csv"`)
	w.Write([]byte(account.SampleCSV())) //nolint:errcheck
}

// authorizeOwner loads the account and rejects the request with 403 when
// the caller neither owns it nor is an admin.
func (h *AccountHandler) authorizeOwner(w http.ResponseWriter, r *http.Request, id uuid.UUID) bool {
	if isAdmin(r.Context()) {
		return true
	}

	acc, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondError(h.log, w, r, err)
		return false
	}
	if !canAccess(r.Context(), acc.OwnerID) {
		respondError(h.log, w, r, domain.ErrForbidden)
		return false
	}
	return true
}

func toAccountResponse(a domain.Account) accountResponse {
	resp := accountResponse{
		ID:             a.ID.String(),
		Email:          a.Email,
		OwnerID:        a.OwnerID.String(),
		Province:       a.Province,
		City:           a.City,
		LastReviewDate: a.LastReviewDate,
		UsedInSAB:      a.UsedInSAB,
		Available:      a.Available,
		Blocked:        a.Blocked,
		InCooldown:     a.InCooldown,
		CooldownEnd:    a.CooldownEnd,
		Comments:       a.Comments,
		IP:             a.IP,
		Emulator:       a.Emulator,
		DeviceType:     a.DeviceType.String(),
		RiskLevel:      a.RiskLevel.String(),
		RiskReason:     a.RiskReason,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
	for _, u := range a.UsageHistory {
		resp.UsageHistory = append(resp.UsageHistory, usageEntryResponse{
			ID:         u.ID.String(),
			BusinessID: u.BusinessID.String(),
			UsedAt:     u.UsedAt,
			Province:   u.Province,
			City:       u.City,
			Activity:   u.Activity.String(),
			Notes:      u.Notes,
		})
	}
	for _, p := range a.TrafficPatterns {
		resp.TrafficPatterns = append(resp.TrafficPatterns, toTrafficPatternResponse(p))
	}
	return resp
}

func toTrafficPatternResponse(p domain.TrafficPattern) trafficPatternResponse {
	return trafficPatternResponse{
		ID:         p.ID.String(),
		BusinessID: p.BusinessID.String(),
		Frequency:  p.Frequency.String(),
		Type:       p.Type.String(),
		Active:     p.Active,
		StartDate:  p.StartDate,
		EndDate:    p.EndDate,
		LastSent:   p.LastSent,
		NextSent:   p.NextSent,
	}
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
