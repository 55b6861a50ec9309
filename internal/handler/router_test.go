package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/sacco-ledger/internal/auth"
	"github.com/segyhp/sacco-ledger/internal/domain"
	"github.com/segyhp/sacco-ledger/internal/mocks"
	customError "github.com/segyhp/sacco-ledger/pkg/errors"
)

var (
	admin  = domain.Actor{MemberID: "admin-1", Role: domain.RoleAdmin}
	member = domain.Actor{MemberID: "member-1", Role: domain.RoleMember}
)

type fakePinger struct {
	err error
}

func (p fakePinger) PingContext(context.Context) error {
	return p.err
}

type server struct {
	handler   http.Handler
	tokens    *auth.Tokens
	members   *mocks.MockMemberService
	loans     *mocks.MockLoanService
	ledger    *mocks.MockLedgerService
	unfreeze  *mocks.MockUnfreezeService
	dashboard *mocks.MockDashboardService
	cache     *mocks.MockDashboardCache
}

func newServer(db DBPinger) *server {
	logger, _ := test.NewNullLogger()
	s := &server{
		tokens:    auth.NewTokens("test-secret", "sacco-ledger", time.Hour),
		members:   &mocks.MockMemberService{},
		loans:     &mocks.MockLoanService{},
		ledger:    &mocks.MockLedgerService{},
		unfreeze:  &mocks.MockUnfreezeService{},
		dashboard: &mocks.MockDashboardService{},
		cache:     &mocks.MockDashboardCache{},
	}

	s.handler = NewRouter(Handlers{
		Health:    NewHealthHandler(db, nil, time.Second),
		Members:   NewMemberHandler(s.members, s.ledger),
		Loans:     NewLoanHandler(s.loans),
		Ledger:    NewLedgerHandler(s.ledger),
		Unfreeze:  NewUnfreezeHandler(s.unfreeze),
		Dashboard: NewDashboardHandler(s.dashboard),
	}, RouterConfig{
		Tokens:         s.tokens,
		Cache:          s.cache,
		Log:            logger,
		AllowedOrigins: "*",
	})
	return s
}

func (s *server) do(t *testing.T, actor *domain.Actor, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		token, err := s.tokens.Issue(*actor)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestHealth(t *testing.T) {
	s := newServer(fakePinger{})

	w := s.do(t, nil, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, nil, http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &status))
	assert.Equal(t, "ok", status.Checks["database"])
	assert.Equal(t, "disabled", status.Checks["redis"])
}

func TestReady_DatabaseDown(t *testing.T) {
	s := newServer(fakePinger{err: errors.New("connection refused")})

	w := s.do(t, nil, http.MethodGet, "/health/ready", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestAPI_RequiresToken(t *testing.T) {
	s := newServer(fakePinger{})

	w := s.do(t, nil, http.MethodGet, "/api/v1/loans", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, customError.ErrCodeUnauthorized, decode(t, w).Code)
	s.loans.AssertNotCalled(t, "ListLoans", mock.Anything, mock.Anything, mock.Anything)
}

func TestCORS_Preflight(t *testing.T) {
	s := newServer(fakePinger{})

	w := s.do(t, nil, http.MethodOptions, "/api/v1/loans", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCreateMember(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(*server)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "created",
			body: map[string]string{
				"member_number": "VFA-001",
				"first_name":    "Grace",
				"last_name":     "Achieng",
				"phone":         "+256700000001",
			},
			setupMock: func(s *server) {
				s.members.On("CreateMember", mock.Anything, admin, mock.MatchedBy(func(req *domain.CreateMemberRequest) bool {
					return req.MemberNumber == "VFA-001" && req.Phone == "+256700000001"
				})).Return(&domain.Member{ID: "M1", MemberNumber: "VFA-001"}, nil)
				s.cache.On("Invalidate", mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "malformed body",
			body:           `{"member_number":`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   customError.ErrCodeValidation,
		},
		{
			name:           "unknown field",
			body:           `{"member_number":"VFA-001","balance":"10"}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   customError.ErrCodeValidation,
		},
		{
			name: "duplicate",
			body: map[string]string{"member_number": "VFA-001"},
			setupMock: func(s *server) {
				s.members.On("CreateMember", mock.Anything, admin, mock.Anything).
					Return(nil, customError.WrapMemberAlreadyExists("member number"))
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   customError.ErrCodeMemberConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServer(fakePinger{})
			if tt.setupMock != nil {
				tt.setupMock(s)
			}

			w := s.do(t, &admin, http.MethodPost, "/api/v1/members", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decode(t, w).Code)
			}
			s.members.AssertExpectations(t)
			s.cache.AssertExpectations(t)
			if tt.expectedStatus != http.StatusCreated {
				s.cache.AssertNotCalled(t, "Invalidate", mock.Anything)
			}
		})
	}
}

func TestMemberRoutes(t *testing.T) {
	s := newServer(fakePinger{})
	s.members.On("GetMember", mock.Anything, member, "member-1").Return(&domain.Member{ID: "member-1"}, nil)
	s.members.On("UpdateMemberStatus", mock.Anything, admin, "M1", &domain.UpdateMemberStatusRequest{Status: domain.MemberStatusFrozen}).
		Return(&domain.Member{ID: "M1", Status: domain.MemberStatusFrozen}, nil)
	s.ledger.On("GetSavings", mock.Anything, member, "member-1").Return(&domain.Savings{MemberID: "member-1"}, nil)
	s.cache.On("Invalidate", mock.Anything).Return(nil)

	assert.Equal(t, http.StatusOK, s.do(t, &member, http.MethodGet, "/api/v1/members/member-1", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, &member, http.MethodGet, "/api/v1/members/member-1/savings", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, &admin, http.MethodPatch, "/api/v1/members/M1/status", map[string]string{"status": "frozen"}).Code)
	s.members.AssertExpectations(t)
	s.ledger.AssertExpectations(t)
}

func TestListLoans_Pagination(t *testing.T) {
	s := newServer(fakePinger{})
	s.loans.On("ListLoans", mock.Anything, admin, domain.LoanFilter{
		MemberID: "M1",
		Status:   domain.LoanStatusActive,
		Page:     domain.Page{Limit: 10, Offset: 10},
	}).Return([]*domain.Loan{{ID: "L11"}}, int64(11), nil)

	w := s.do(t, &admin, http.MethodGet, "/api/v1/loans?member_id=M1&status=active&page=2&limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Items []domain.Loan `json:"items"`
		Meta  struct {
			Page       int   `json:"page"`
			Total      int64 `json:"total"`
			TotalPages int   `json:"total_pages"`
			HasNext    bool  `json:"has_next"`
			HasPrev    bool  `json:"has_prev"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &page))
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.Meta.Page)
	assert.Equal(t, int64(11), page.Meta.Total)
	assert.Equal(t, 2, page.Meta.TotalPages)
	assert.False(t, page.Meta.HasNext)
	assert.True(t, page.Meta.HasPrev)
}

func TestLoanTransitions(t *testing.T) {
	tests := []struct {
		path   string
		method string
	}{
		{"/api/v1/loans/L1/approve", "ApproveLoan"},
		{"/api/v1/loans/L1/reject", "RejectLoan"},
		{"/api/v1/loans/L1/disburse", "DisburseLoan"},
		{"/api/v1/loans/L1/overdue", "MarkOverdue"},
		{"/api/v1/loans/L1/default", "MarkDefaulted"},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			s := newServer(fakePinger{})
			s.loans.On(tt.method, mock.Anything, admin, "L1").Return(&domain.Loan{ID: "L1"}, nil)
			s.cache.On("Invalidate", mock.Anything).Return(nil)

			w := s.do(t, &admin, http.MethodPost, tt.path, nil)

			assert.Equal(t, http.StatusOK, w.Code)
			s.loans.AssertExpectations(t)
			s.cache.AssertNumberOfCalls(t, "Invalidate", 1)
		})
	}
}

func TestLoanTransition_Forbidden(t *testing.T) {
	s := newServer(fakePinger{})
	s.loans.On("ApproveLoan", mock.Anything, member, "L1").
		Return(nil, customError.WrapForbidden("member", string(domain.PermLoanDecide)))

	w := s.do(t, &member, http.MethodPost, "/api/v1/loans/L1/approve", nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	s.cache.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestApplyRepayment(t *testing.T) {
	t.Run("applied", func(t *testing.T) {
		s := newServer(fakePinger{})
		s.loans.On("ApplyRepayment", mock.Anything, admin, "L1", mock.MatchedBy(func(req *domain.CreateRepaymentRequest) bool {
			return req.Amount.String() == "500000" && req.PaymentMethod == domain.PaymentMethodMobileMoney
		})).Return(&domain.RepaymentResult{
			Repayment: &domain.Repayment{ID: "R1"},
			Loan:      &domain.Loan{ID: "L1", Status: domain.LoanStatusPaid},
		}, nil)
		s.cache.On("Invalidate", mock.Anything).Return(nil)

		w := s.do(t, &admin, http.MethodPost, "/api/v1/loans/L1/repayments",
			`{"amount":"500000","payment_method":"mobile_money"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"paid"`)
	})

	t.Run("exceeds balance", func(t *testing.T) {
		s := newServer(fakePinger{})
		s.loans.On("ApplyRepayment", mock.Anything, admin, "L1", mock.Anything).
			Return(nil, customError.WrapRepaymentExceedsBalance("150", "100"))

		w := s.do(t, &admin, http.MethodPost, "/api/v1/loans/L1/repayments",
			`{"amount":"150","payment_method":"cash"}`)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, customError.ErrCodeRepaymentExceedsBalance, decode(t, w).Code)
		s.cache.AssertNotCalled(t, "Invalidate", mock.Anything)
	})
}

func TestListRepayments(t *testing.T) {
	s := newServer(fakePinger{})
	s.loans.On("ListRepayments", mock.Anything, member, "L1", domain.Page{Limit: 20}).
		Return([]*domain.Repayment{{ID: "R1"}}, int64(1), nil)

	w := s.do(t, &member, http.MethodGet, "/api/v1/loans/L1/repayments", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	s.loans.AssertExpectations(t)
}

func TestGetRepayment(t *testing.T) {
	s := newServer(fakePinger{})
	s.loans.On("GetRepayment", mock.Anything, member, "R1").
		Return(&domain.Repayment{ID: "R1", LoanID: "L1"}, nil)
	s.loans.On("GetRepayment", mock.Anything, member, "R2").
		Return(nil, customError.WrapForbidden("member", string(domain.PermLedgerReadAll)))
	s.loans.On("GetRepayment", mock.Anything, admin, "R9").
		Return(nil, customError.WrapRepaymentNotFound("R9"))

	w := s.do(t, &member, http.MethodGet, "/api/v1/repayments/R1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"loan_id":"L1"`)

	w = s.do(t, &member, http.MethodGet, "/api/v1/repayments/R2", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, &admin, http.MethodGet, "/api/v1/repayments/R9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, customError.ErrCodeRepaymentNotFound, decode(t, w).Code)
	s.loans.AssertExpectations(t)
}

func TestTransactions(t *testing.T) {
	s := newServer(fakePinger{})
	s.ledger.On("RecordTransaction", mock.Anything, admin, mock.MatchedBy(func(req *domain.CreateTransactionRequest) bool {
		return req.Type == domain.TransactionWithdrawal && req.MemberID == "M1"
	})).Return(nil, customError.WrapInsufficientSavings("500", "100"))
	s.ledger.On("GetTransaction", mock.Anything, admin, "T9").Return(nil, customError.WrapTransactionNotFound("T9"))
	s.ledger.On("ListTransactions", mock.Anything, member, domain.TransactionFilter{
		Type: domain.TransactionDeposit,
		Page: domain.Page{Limit: 20},
	}).Return([]*domain.Transaction{}, int64(0), nil)

	w := s.do(t, &admin, http.MethodPost, "/api/v1/transactions", `{"member_id":"M1","type":"withdrawal","amount":"500"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, customError.ErrCodeInsufficientSavings, decode(t, w).Code)

	w = s.do(t, &admin, http.MethodGet, "/api/v1/transactions/T9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, &member, http.MethodGet, "/api/v1/transactions?type=deposit", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	s.ledger.AssertExpectations(t)
}

func TestUnfreezeRoutes(t *testing.T) {
	s := newServer(fakePinger{})
	s.unfreeze.On("RequestUnfreeze", mock.Anything, member, &domain.CreateUnfreezeRequest{Reason: "Arrears cleared"}).
		Return(&domain.UnfreezeRequest{ID: "R1", Status: domain.UnfreezeStatusPending}, nil)
	s.unfreeze.On("ProcessUnfreezeRequest", mock.Anything, admin, "R1", &domain.ProcessUnfreezeRequest{Decision: domain.UnfreezeStatusApproved}).
		Return(nil, customError.WrapUnfreezeAlreadyProcessed("R1", "denied"))
	s.unfreeze.On("GetUnfreezeRequest", mock.Anything, member, "R1").
		Return(&domain.UnfreezeRequest{ID: "R1"}, nil)
	s.unfreeze.On("ListUnfreezeRequests", mock.Anything, admin, domain.UnfreezeFilter{
		Status: domain.UnfreezeStatusPending,
		Page:   domain.Page{Limit: 20},
	}).Return([]*domain.UnfreezeRequest{}, int64(0), nil)
	s.cache.On("Invalidate", mock.Anything).Return(nil)

	w := s.do(t, &member, http.MethodPost, "/api/v1/unfreeze-requests", `{"reason":"Arrears cleared"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, &admin, http.MethodPost, "/api/v1/unfreeze-requests/R1/process", `{"decision":"approved"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, customError.ErrCodeUnfreezeAlreadyProcessed, decode(t, w).Code)

	assert.Equal(t, http.StatusOK, s.do(t, &member, http.MethodGet, "/api/v1/unfreeze-requests/R1", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, &admin, http.MethodGet, "/api/v1/unfreeze-requests?status=pending", nil).Code)

	s.unfreeze.AssertExpectations(t)
	s.cache.AssertNumberOfCalls(t, "Invalidate", 1)
}

func TestDashboardStats(t *testing.T) {
	s := newServer(fakePinger{})
	s.dashboard.On("GetDashboardStats", mock.Anything, admin).Return(&domain.DashboardStats{TotalMembers: 3}, nil)
	s.dashboard.On("GetDashboardStats", mock.Anything, member).
		Return(nil, customError.WrapForbidden("member", string(domain.PermDashboardRead)))

	w := s.do(t, &admin, http.MethodGet, "/api/v1/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_members":3`)

	w = s.do(t, &member, http.MethodGet, "/api/v1/dashboard/stats", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandler_WithoutAuthMiddleware(t *testing.T) {
	h := NewLoanHandler(&mocks.MockLoanService{})

	w := httptest.NewRecorder()
	h.GetLoan(w, httptest.NewRequest(http.MethodGet, "/loans/L1", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
