package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/sacco-ledger/internal/config"
	"github.com/segyhp/sacco-ledger/internal/domain"
	"github.com/segyhp/sacco-ledger/internal/mocks"
	customError "github.com/segyhp/sacco-ledger/pkg/errors"
)

var (
	fixedNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

	adminActor   = domain.Actor{MemberID: "admin-1", Role: domain.RoleAdmin}
	managerActor = domain.Actor{MemberID: "manager-1", Role: domain.RoleManager}
	memberActor  = domain.Actor{MemberID: "member-1", Role: domain.RoleMember}
)

type fixture struct {
	repos     *mocks.Repos
	tx        *mocks.Transactor
	publisher *mocks.MockPublisher
}

func newFixture() *fixture {
	repos := mocks.NewRepos()
	publisher := &mocks.MockPublisher{}
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()

	return &fixture{
		repos:     repos,
		tx:        &mocks.Transactor{Repos: repos},
		publisher: publisher,
	}
}

func (f *fixture) memberService() *MemberService {
	logger, _ := test.NewNullLogger()
	s := NewMemberService(f.repos.Repositories(), f.tx, f.publisher, logger)
	s.now = func() time.Time { return fixedNow }
	return s
}

func (f *fixture) loanService(policy string) *LoanService {
	logger, _ := test.NewNullLogger()
	cfg := &config.Config{
		Business: config.BusinessConfig{
			DefaultInterestRate: "12",
			MaxTermMonths:       60,
			OverpayPolicy:       policy,
		},
	}
	s := NewLoanService(f.repos.Repositories(), f.tx, f.publisher, logger, cfg)
	s.now = func() time.Time { return fixedNow }
	return s
}

func (f *fixture) ledgerService() *LedgerService {
	logger, _ := test.NewNullLogger()
	s := NewLedgerService(f.repos.Repositories(), f.tx, f.publisher, logger)
	s.now = func() time.Time { return fixedNow }
	return s
}

func (f *fixture) unfreezeService() *UnfreezeService {
	logger, _ := test.NewNullLogger()
	s := NewUnfreezeService(f.repos.Repositories(), f.tx, f.publisher, logger)
	s.now = func() time.Time { return fixedNow }
	return s
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decEq(want string) interface{} {
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(dec(want)) })
}

func assertKind(t *testing.T, err error, kind customError.Kind) {
	t.Helper()
	if assert.Error(t, err) {
		assert.Equal(t, kind, customError.KindOf(err), "error: %v", err)
	}
}

func activeMember(id string) *domain.Member {
	return &domain.Member{
		ID:           id,
		MemberNumber: "VFA-" + id,
		FirstName:    "Grace",
		LastName:     "Achieng",
		Phone:        "+256700000000",
		Role:         domain.RoleMember,
		IsActive:     true,
		Status:       domain.MemberStatusActive,
	}
}
