package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Freskan23/cuentascontrol/internal/domain"
	"github.com/Freskan23/cuentascontrol/internal/service/assignment"
	"github.com/Freskan23/cuentascontrol/pkg/ctxutil"
)

// assignmentService defines the minimal interface needed by AssignmentHandler.
type assignmentService interface {
	AnalyzeRiskByID(ctx context.Context, accountID, businessID uuid.UUID) (domain.RiskAssessment, error)
	FindSafeAccounts(ctx context.Context, input assignment.FindSafeAccountsInput) (*assignment.FindSafeAccountsResult, error)
	AssignAccount(ctx context.Context, input assignment.AssignAccountInput) (*assignment.AssignAccountResult, error)
	AssignBest(ctx context.Context, businessID uuid.UUID, ownerID *uuid.UUID) (*assignment.AssignAccountResult, error)
	UnassignAccount(ctx context.Context, accountID, businessID uuid.UUID) error
	CompleteReview(ctx context.Context, input assignment.CompleteReviewInput) (*assignment.CompleteReviewResult, error)
}

// AssignmentHandler serves the assignment engine's REST endpoints.
type AssignmentHandler struct {
	svc assignmentService
	log *slog.Logger
}

// NewAssignmentHandler creates an AssignmentHandler.
func NewAssignmentHandler(svc assignmentService, logger *slog.Logger) *AssignmentHandler {
	return &AssignmentHandler{svc: svc, log: logger.With("handler", "assignment")}
}

type findSafeRequest struct {
	BusinessID string  `json:"businessId"`
	Count      int     `json:"count"`
	OwnerID    *string `json:"ownerId"`
}

type assignRequest struct {
	// AccountID is optional; when omitted the best safe candidate is
	// picked automatically.
	AccountID  string  `json:"accountId"`
	BusinessID string  `json:"businessId"`
	OwnerID    *string `json:"ownerId"`
}

type completeReviewRequest struct {
	AccountID  string `json:"accountId"`
	BusinessID string `json:"businessId"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

type riskAssessmentResponse struct {
	Level          string   `json:"level"`
	Reasons        []string `json:"reasons"`
	Recommendation string   `json:"recommendation"`
	Score          int      `json:"score"`
}

type candidateResponse struct {
	Account  accountResponse        `json:"account"`
	Analysis riskAssessmentResponse `json:"analysis"`
}

type findSafeResponse struct {
	Business   businessSummaryResponse `json:"business"`
	Candidates []candidateResponse     `json:"candidates"`
}

type businessSummaryResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Province string `json:"province"`
	City     string `json:"city"`
	Sector   string `json:"sector"`
	Category string `json:"category"`
}

type assignResponse struct {
	Assigned   bool                   `json:"assigned"`
	Analysis   riskAssessmentResponse `json:"analysis"`
	Assignment *assignmentResponse    `json:"assignment,omitempty"`
}

type completeReviewResponse struct {
	AccountID   string    `json:"accountId"`
	BusinessID  string    `json:"businessId"`
	CompletedAt time.Time `json:"completedAt"`
	CooldownEnd time.Time `json:"cooldownEndDate"`
}

// Analyze handles GET /assignments/analyze?accountId=&businessId=.
func (h *AssignmentHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	accountID, err := uuid.Parse(q.Get("accountId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId")
		return
	}
	businessID, err := uuid.Parse(q.Get("businessId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid businessId")
		return
	}

	analysis, err := h.svc.AnalyzeRiskByID(r.Context(), accountID, businessID)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toRiskResponse(analysis))
}

// FindSafe handles POST /assignments/find-safe.
func (h *AssignmentHandler) FindSafe(w http.ResponseWriter, r *http.Request) {
	var req findSafeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	businessID, err := uuid.Parse(req.BusinessID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid businessId")
		return
	}

	input := assignment.FindSafeAccountsInput{
		BusinessID: businessID,
		Count:      req.Count,
	}
	if req.OwnerID != nil {
		ownerID, err := uuid.Parse(*req.OwnerID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid ownerId")
			return
		}
		input.OwnerID = &ownerID
	}

	// Non-admins search their own accounts only.
	if !isAdmin(r.Context()) {
		userID, ok := ctxutil.UserIDFromCtx(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		input.OwnerID = &userID
	}

	result, err := h.svc.FindSafeAccounts(r.Context(), input)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}

	out := findSafeResponse{
		Business: businessSummaryResponse{
			ID:       result.Business.ID.String(),
			Name:     result.Business.Name,
			Province: result.Business.Province,
			City:     result.Business.City,
			Sector:   result.Business.Sector.String(),
			Category: result.Business.Category.String(),
		},
		Candidates: make([]candidateResponse, 0, len(result.Candidates)),
	}
	for _, c := range result.Candidates {
		out.Candidates = append(out.Candidates, candidateResponse{
			Account:  toAccountResponse(c.Account),
			Analysis: toRiskResponse(c.Analysis),
		})
	}

	writeJSON(w, http.StatusOK, out)
}

// Assign handles POST /assignments. A request without accountId picks
// the best safe candidate automatically.
func (h *AssignmentHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if !decodeBody(w, r, &req) {
		return
	}

	businessID, err := uuid.Parse(req.BusinessID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid businessId")
		return
	}

	var result *assignment.AssignAccountResult
	if req.AccountID == "" {
		var ownerID *uuid.UUID
		if req.OwnerID != nil {
			id, err := uuid.Parse(*req.OwnerID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid ownerId")
				return
			}
			ownerID = &id
		}
		if !isAdmin(r.Context()) {
			userID, ok := ctxutil.UserIDFromCtx(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			ownerID = &userID
		}
		result, err = h.svc.AssignBest(r.Context(), businessID, ownerID)
	} else {
		accountID, parseErr := uuid.Parse(req.AccountID)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "invalid accountId")
			return
		}
		result, err = h.svc.AssignAccount(r.Context(), assignment.AssignAccountInput{
			AccountID:  accountID,
			BusinessID: businessID,
		})
	}
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}

	out := assignResponse{
		Assigned: result.Assigned,
		Analysis: toRiskResponse(result.Analysis),
	}
	status := http.StatusUnprocessableEntity
	if result.Assigned {
		status = http.StatusCreated
		out.Assignment = &assignmentResponse{
			ID:         result.Assignment.ID.String(),
			AccountID:  result.Assignment.AccountID.String(),
			AssignedAt: result.Assignment.AssignedAt,
			Status:     result.Assignment.Status.String(),
		}
	}

	writeJSON(w, status, out)
}

// Unassign handles POST /assignments/cancel.
func (h *AssignmentHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if !decodeBody(w, r, &req) {
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId")
		return
	}
	businessID, err := uuid.Parse(req.BusinessID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid businessId")
		return
	}

	if err := h.svc.UnassignAccount(r.Context(), accountID, businessID); err != nil {
		respondError(h.log, w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CompleteReview handles POST /assignments/complete.
func (h *AssignmentHandler) CompleteReview(w http.ResponseWriter, r *http.Request) {
	var req completeReviewRequest
	if !decodeBody(w, r, &req) {
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId")
		return
	}
	businessID, err := uuid.Parse(req.BusinessID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid businessId")
		return
	}

	result, err := h.svc.CompleteReview(r.Context(), assignment.CompleteReviewInput{
		AccountID:  accountID,
		BusinessID: businessID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, completeReviewResponse{
		AccountID:   result.AccountID.String(),
		BusinessID:  result.BusinessID.String(),
		CompletedAt: result.CompletedAt,
		CooldownEnd: result.CooldownEnd,
	})
}

func toRiskResponse(a domain.RiskAssessment) riskAssessmentResponse {
	reasons := a.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	return riskAssessmentResponse{
		Level:          a.Level.String(),
		Reasons:        reasons,
		Recommendation: a.Recommendation,
		Score:          a.Score,
	}
}
