package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/laresh1090/pennivault/internal/calculation"
	"github.com/laresh1090/pennivault/internal/domain"
)

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed id", domain.ErrInvalidParameters)
	}
	return id, nil
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidParameters, err)
	}
	return nil
}

type installmentQuoteRequest struct {
	Price          decimal.Decimal `json:"price"`
	UpfrontPercent decimal.Decimal `json:"upfront_percent"`
	TermMonths     int             `json:"term_months"`
	StartDate      *time.Time      `json:"start_date,omitempty"`
}

func (s *Server) quoteInstallmentHandler(w http.ResponseWriter, r *http.Request) {
	var req installmentQuoteRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	engine := s.ledger.Engine()
	breakdown, err := engine.QuoteInstallment(req.Price, req.UpfrontPercent, req.TermMonths)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := struct {
		Breakdown domain.PaymentBreakdown     `json:"breakdown"`
		Ladder    []domain.InstallmentPayment `json:"ladder,omitempty"`
	}{Breakdown: breakdown}
	if req.StartDate != nil {
		ladder, err := engine.LadderFor(breakdown, *req.StartDate, req.TermMonths)
		if err != nil {
			s.writeError(w, err)
			return
		}
		resp.Ladder = ladder
	}

	s.metrics.quotes.WithLabelValues("installment").Inc()
	writeJSON(w, http.StatusOK, resp)
}

type lockQuoteRequest struct {
	Principal    decimal.Decimal     `json:"principal"`
	DurationDays int                 `json:"duration_days"`
	InterestMode domain.InterestMode `json:"interest_mode"`
	StartDate    time.Time           `json:"start_date"`
}

func (s *Server) quoteLockHandler(w http.ResponseWriter, r *http.Request) {
	var req lockQuoteRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	quote, err := s.ledger.Engine().QuoteLock(domain.LockParameters{
		Principal:    req.Principal,
		DurationDays: req.DurationDays,
		InterestMode: req.InterestMode,
		StartDate:    req.StartDate,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.metrics.quotes.WithLabelValues("lock").Inc()
	writeJSON(w, http.StatusOK, quote)
}

type goalQuoteRequest struct {
	Contribution decimal.Decimal  `json:"contribution"`
	Target       decimal.Decimal  `json:"target"`
	Frequency    domain.Frequency `json:"frequency"`
}

func (s *Server) quoteGoalHandler(w http.ResponseWriter, r *http.Request) {
	var req goalQuoteRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	projection, err := s.ledger.Engine().ProjectGoal(req.Contribution, req.Target, req.Frequency)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.metrics.quotes.WithLabelValues("goal").Inc()
	writeJSON(w, http.StatusOK, projection)
}

type createPlanRequest struct {
	CustomerKey    string          `json:"customer_key"`
	Price          decimal.Decimal `json:"price"`
	UpfrontPercent decimal.Decimal `json:"upfront_percent"`
	TermMonths     int             `json:"term_months"`
	StartDate      time.Time       `json:"start_date"`
}

func (s *Server) createPlanHandler(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.CustomerKey == "" {
		s.writeError(w, fmt.Errorf("%w: customer_key is required", domain.ErrInvalidParameters))
		return
	}
	if req.StartDate.IsZero() {
		req.StartDate = time.Now().UTC()
	}

	plan, err := s.ledger.CreatePurchase(r.Context(), req.CustomerKey, req.Price, req.UpfrontPercent, req.TermMonths, req.StartDate)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) getPlanHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	plan, err := s.ledger.GetPlan(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

type applyPaymentRequest struct {
	PaymentNumber int             `json:"payment_number"`
	Amount        decimal.Decimal `json:"amount"`
}

func (s *Server) applyPaymentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req applyPaymentRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	plan, err := s.ledger.ApplyPayment(r.Context(), id, req.PaymentNumber, req.Amount, time.Now().UTC())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.paymentsOK.Inc()
	writeJSON(w, http.StatusOK, plan)
}

type createLockRequest struct {
	CustomerKey  string              `json:"customer_key"`
	Principal    decimal.Decimal     `json:"principal"`
	DurationDays int                 `json:"duration_days"`
	InterestMode domain.InterestMode `json:"interest_mode"`
	StartDate    time.Time           `json:"start_date"`
}

func (s *Server) createLockHandler(w http.ResponseWriter, r *http.Request) {
	var req createLockRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.CustomerKey == "" {
		s.writeError(w, fmt.Errorf("%w: customer_key is required", domain.ErrInvalidParameters))
		return
	}
	if req.StartDate.IsZero() {
		req.StartDate = time.Now().UTC()
	}

	plan, err := s.ledger.CreateLock(r.Context(), req.CustomerKey, req.Principal, req.DurationDays, req.InterestMode, req.StartDate)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) getLockHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	plan, err := s.ledger.GetLock(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) breakQuoteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	quote, err := s.ledger.LockBreakQuote(id, time.Now().UTC())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

type breakLockRequest struct {
	Acknowledged bool `json:"acknowledged"`
}

func (s *Server) breakLockHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req breakLockRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	plan, quote, err := s.ledger.BreakLock(r.Context(), id, req.Acknowledged, time.Now().UTC())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Plan  *domain.LockPlan  `json:"plan"`
		Quote domain.BreakQuote `json:"quote"`
	}{plan, quote})
}

func (s *Server) matureLockHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	plan, err := s.ledger.MatureLock(r.Context(), id, time.Now().UTC())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

type createGroupRequest struct {
	Name            string          `json:"name"`
	TotalSlots      int             `json:"total_slots"`
	TotalRounds     int             `json:"total_rounds"`
	Contribution    decimal.Decimal `json:"contribution"`
	VendorSponsored bool            `json:"vendor_sponsored"`
}

func (s *Server) createGroupHandler(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	group, err := s.ledger.CreateGroup(req.Name, req.TotalSlots, req.TotalRounds, req.Contribution, req.VendorSponsored)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (s *Server) getGroupHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	group, err := s.ledger.GetGroup(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (s *Server) groupScheduleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	rows, err := s.ledger.GroupTurnTable(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Rounds []calculation.TurnRow `json:"rounds"`
	}{rows})
}

type memberRequest struct {
	MemberKey string `json:"member_key"`
}

func (s *Server) joinGroupHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req memberRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.MemberKey == "" {
		s.writeError(w, fmt.Errorf("%w: member_key is required", domain.ErrInvalidParameters))
		return
	}

	group, err := s.ledger.JoinGroup(id, req.MemberKey)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (s *Server) contributeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req memberRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	group, err := s.ledger.Contribute(r.Context(), id, req.MemberKey)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (s *Server) advanceRoundHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	group, err := s.ledger.AdvanceRound(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.roundsAdvanced.Inc()
	writeJSON(w, http.StatusOK, group)
}
