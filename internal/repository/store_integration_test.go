package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/sacco-ledger/internal/domain"
)

// setupStore connects to TEST_DATABASE_URL, migrates it and wipes every table.
func setupStore(t *testing.T) (*Store, *sqlx.DB) {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	require.NoError(t, RunMigrations(url))

	db, err := sqlx.Connect("postgres", url)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`TRUNCATE repayments, transactions, unfreeze_requests, loans, savings, members`)
	require.NoError(t, err)

	return NewStore(db), db
}

func newMember(number string) *domain.Member {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Member{
		ID:           uuid.New().String(),
		MemberNumber: number,
		FirstName:    "Amina",
		LastName:     "Nakato",
		Phone:        "+256700000001",
		Role:         domain.RoleMember,
		JoinDate:     now,
		IsActive:     true,
		Status:       domain.MemberStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func newLoan(memberID, number string, principal int64) *domain.Loan {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Loan{
		ID:                 uuid.New().String(),
		MemberID:           memberID,
		LoanNumber:         number,
		Principal:          decimal.NewFromInt(principal),
		InterestRate:       decimal.NewFromInt(12),
		TermMonths:         12,
		MonthlyInstallment: decimal.NewFromInt(principal / 12),
		Status:             domain.LoanStatusPending,
		Balance:            decimal.NewFromInt(principal),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func TestStore_MemberLifecycle(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	repos := store.Repositories()

	member := newMember("SACCO-001")
	err := store.WithinTx(ctx, func(r Repositories) error {
		if err := r.Members.Create(ctx, member); err != nil {
			return err
		}
		return r.Savings.Create(ctx, &domain.Savings{
			ID:        uuid.New().String(),
			MemberID:  member.ID,
			Balance:   decimal.Zero,
			UpdatedAt: member.CreatedAt,
		})
	})
	require.NoError(t, err)

	got, err := repos.Members.GetByID(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, "SACCO-001", got.MemberNumber)

	savings, err := repos.Savings.GetByMemberID(ctx, member.ID)
	require.NoError(t, err)
	assert.True(t, savings.Balance.IsZero())

	dup := newMember("SACCO-001")
	err = repos.Members.Create(ctx, dup)
	assert.True(t, errors.Is(err, ErrDuplicate))
	assert.Equal(t, "members_member_number_key", DuplicateConstraint(err))

	require.NoError(t, repos.Members.UpdateStatus(ctx, member.ID, domain.MemberStatusFrozen, time.Now()))
	got, err = repos.Members.GetByID(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MemberStatusFrozen, got.Status)
	assert.True(t, got.IsActive)

	_, err = repos.Members.GetByID(ctx, uuid.New().String())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_WithinTxRollsBack(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	member := newMember("SACCO-002")
	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(r Repositories) error {
		require.NoError(t, r.Members.Create(ctx, member))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Repositories().Members.GetByID(ctx, member.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_LoanConditionalStatus(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	repos := store.Repositories()

	member := newMember("SACCO-003")
	require.NoError(t, repos.Members.Create(ctx, member))
	loan := newLoan(member.ID, "LN-001", 1200)
	require.NoError(t, repos.Loans.Create(ctx, loan))

	now := time.Now()
	change := domain.LoanStatusChange{
		LoanID:     loan.ID,
		From:       domain.LoanStatusPending,
		To:         domain.LoanStatusApproved,
		ApprovedBy: &member.ID,
		ApprovedAt: &now,
		UpdatedAt:  now,
	}
	require.NoError(t, repos.Loans.UpdateStatus(ctx, change))

	// a second caller holding the stale status loses
	err := repos.Loans.UpdateStatus(ctx, change)
	assert.ErrorIs(t, err, ErrStaleState)

	got, err := repos.Loans.GetByID(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusApproved, got.Status)
	require.NotNil(t, got.ApprovedBy)
	assert.Equal(t, member.ID, *got.ApprovedBy)

	// balance above principal violates the check constraint
	err = repos.Loans.ApplyBalance(ctx, loan.ID, decimal.NewFromInt(5000), domain.LoanStatusApproved, now)
	assert.Error(t, err)
}

func TestStore_RepaymentLookup(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	repos := store.Repositories()

	member := newMember("SACCO-006")
	require.NoError(t, repos.Members.Create(ctx, member))
	loan := newLoan(member.ID, "LN-006", 1200)
	require.NoError(t, repos.Loans.Create(ctx, loan))

	repayment := &domain.Repayment{
		ID:            uuid.New().String(),
		LoanID:        loan.ID,
		Amount:        decimal.RequireFromString("100.50"),
		PaymentMethod: domain.PaymentMethodMobileMoney,
		ProcessedBy:   member.ID,
		PaymentDate:   time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repos.Repayments.Create(ctx, repayment))

	got, err := repos.Repayments.GetByID(ctx, repayment.ID)
	require.NoError(t, err)
	assert.Equal(t, loan.ID, got.LoanID)
	assert.True(t, got.Amount.Equal(repayment.Amount))

	listed, total, err := repos.Repayments.ListByLoanID(ctx, loan.ID, domain.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, listed, 1)
	assert.Equal(t, repayment.ID, listed[0].ID)

	_, err = repos.Repayments.GetByID(ctx, uuid.New().String())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_OverdueCandidatesAndDashboard(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	repos := store.Repositories()

	member := newMember("SACCO-004")
	require.NoError(t, repos.Members.Create(ctx, member))

	past := time.Now().Add(-48 * time.Hour)
	future := time.Now().Add(48 * time.Hour)

	overdue := newLoan(member.ID, "LN-010", 1000)
	overdue.Status = domain.LoanStatusActive
	overdue.DueDate = &past
	current := newLoan(member.ID, "LN-011", 2000)
	current.Status = domain.LoanStatusActive
	current.DueDate = &future
	pending := newLoan(member.ID, "LN-012", 3000)

	for _, l := range []*domain.Loan{overdue, current, pending} {
		require.NoError(t, repos.Loans.Create(ctx, l))
	}

	candidates, err := repos.Loans.ListOverdueCandidates(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, overdue.ID, candidates[0].ID)

	outstanding, err := repos.Dashboard.OutstandingLoanBalance(ctx, []domain.LoanStatus{domain.LoanStatusActive, domain.LoanStatusOverdue})
	require.NoError(t, err)
	assert.True(t, outstanding.Equal(decimal.NewFromInt(3000)))

	counts, err := repos.Dashboard.LoanCountsByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[domain.LoanStatusActive])
	assert.Equal(t, int64(1), counts[domain.LoanStatusPending])
	assert.Equal(t, int64(0), counts[domain.LoanStatusDefaulted])

	fee := &domain.Transaction{
		ID:        uuid.New().String(),
		MemberID:  &member.ID,
		Type:      domain.TransactionFee,
		Amount:    decimal.RequireFromString("25.50"),
		CreatedAt: time.Now(),
	}
	require.NoError(t, repos.Transactions.Create(ctx, fee))

	revenue, err := repos.Dashboard.SumTransactions(ctx, domain.TransactionFee, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, revenue.Equal(decimal.RequireFromString("25.50")))

	txns, total, err := repos.Transactions.List(ctx, domain.TransactionFilter{MemberID: member.ID, Page: domain.Page{Limit: 10}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, txns, 1)
}

func TestStore_UnfreezeProcessOnlyOnce(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	repos := store.Repositories()

	member := newMember("SACCO-005")
	member.Status = domain.MemberStatusFrozen
	require.NoError(t, repos.Members.Create(ctx, member))

	req := &domain.UnfreezeRequest{
		ID:          uuid.New().String(),
		MemberID:    member.ID,
		Reason:      "Cleared arrears",
		RequestedAt: time.Now(),
		Status:      domain.UnfreezeStatusPending,
	}
	require.NoError(t, repos.Unfreeze.Create(ctx, req))

	pending, err := repos.Unfreeze.HasPending(ctx, member.ID)
	require.NoError(t, err)
	assert.True(t, pending)

	now := time.Now()
	req.Status = domain.UnfreezeStatusApproved
	req.ProcessedBy = &member.ID
	req.ProcessedAt = &now
	require.NoError(t, repos.Unfreeze.Process(ctx, req))
	assert.ErrorIs(t, repos.Unfreeze.Process(ctx, req), ErrStaleState)

	pending, err = repos.Unfreeze.HasPending(ctx, member.ID)
	require.NoError(t, err)
	assert.False(t, pending)
}
