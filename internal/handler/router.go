package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/sacco-ledger/internal/auth"
	"github.com/segyhp/sacco-ledger/internal/cache"
	"github.com/segyhp/sacco-ledger/pkg/response"
)

// Handlers groups every HTTP handler mounted by the router
type Handlers struct {
	Health    *HealthHandler
	Members   *MemberHandler
	Loans     *LoanHandler
	Ledger    *LedgerHandler
	Unfreeze  *UnfreezeHandler
	Dashboard *DashboardHandler
}

// RouterConfig carries the middleware dependencies of the router
type RouterConfig struct {
	Tokens         *auth.Tokens
	Cache          cache.DashboardCache
	Log            logrus.FieldLogger
	AllowedOrigins string
}

// NewRouter mounts health checks at the root and the ledger API under
// /api/v1 behind bearer auth. CORS wraps the router so preflight requests
// are answered before route matching.
func NewRouter(h Handlers, cfg RouterConfig) http.Handler {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware(cfg.Log))

	// Health check
	router.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", h.Health.Ready).Methods(http.MethodGet)

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(auth.Middleware(cfg.Tokens))
	api.Use(cache.InvalidateOnWrite(cfg.Cache, cfg.Log))

	api.HandleFunc("/members", h.Members.CreateMember).Methods(http.MethodPost)
	api.HandleFunc("/members", h.Members.ListMembers).Methods(http.MethodGet)
	api.HandleFunc("/members/{memberId}", h.Members.GetMember).Methods(http.MethodGet)
	api.HandleFunc("/members/{memberId}", h.Members.UpdateMember).Methods(http.MethodPut)
	api.HandleFunc("/members/{memberId}/status", h.Members.UpdateMemberStatus).Methods(http.MethodPatch)
	api.HandleFunc("/members/{memberId}/savings", h.Members.GetSavings).Methods(http.MethodGet)

	api.HandleFunc("/loans", h.Loans.CreateLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans", h.Loans.ListLoans).Methods(http.MethodGet)
	api.HandleFunc("/loans/{loanId}", h.Loans.GetLoan).Methods(http.MethodGet)
	api.HandleFunc("/loans/{loanId}/approve", h.Loans.ApproveLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans/{loanId}/reject", h.Loans.RejectLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans/{loanId}/disburse", h.Loans.DisburseLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans/{loanId}/overdue", h.Loans.MarkOverdue).Methods(http.MethodPost)
	api.HandleFunc("/loans/{loanId}/default", h.Loans.MarkDefaulted).Methods(http.MethodPost)
	api.HandleFunc("/loans/{loanId}/repayments", h.Loans.ApplyRepayment).Methods(http.MethodPost)
	api.HandleFunc("/loans/{loanId}/repayments", h.Loans.ListRepayments).Methods(http.MethodGet)
	api.HandleFunc("/repayments/{repaymentId}", h.Loans.GetRepayment).Methods(http.MethodGet)

	api.HandleFunc("/transactions", h.Ledger.RecordTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions", h.Ledger.ListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{transactionId}", h.Ledger.GetTransaction).Methods(http.MethodGet)

	api.HandleFunc("/unfreeze-requests", h.Unfreeze.RequestUnfreeze).Methods(http.MethodPost)
	api.HandleFunc("/unfreeze-requests", h.Unfreeze.ListUnfreezeRequests).Methods(http.MethodGet)
	api.HandleFunc("/unfreeze-requests/{requestId}", h.Unfreeze.GetUnfreezeRequest).Methods(http.MethodGet)
	api.HandleFunc("/unfreeze-requests/{requestId}/process", h.Unfreeze.ProcessUnfreezeRequest).Methods(http.MethodPost)

	api.HandleFunc("/dashboard/stats", h.Dashboard.Stats).Methods(http.MethodGet)

	return response.CORSMiddleware(cfg.AllowedOrigins)(router)
}
