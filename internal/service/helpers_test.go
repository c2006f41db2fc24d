package service

import (
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"doctransfer/internal/model"
	repoMocks "doctransfer/internal/repository/mocks"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

var (
	owner = model.User{Email: "olga@x.com", Name: "Olga", Surname: "Owner", SubjectID: "sub-olga"}
	rita  = model.User{Email: "rita@x.com", Name: "Rita", Surname: "Reader", SubjectID: "sub-rita"}
	admin = model.User{Email: "ada@x.com", Name: "Ada", Surname: "Admin", Role: "admin"}
)

func newTestAudit(repo *repoMocks.MockAuditRepository) *auditLog {
	return &auditLog{repo: repo, adminRole: "admin", log: zap.NewNop(), now: fixedClock}
}

// expectAudit registers exactly one audit append carrying the given actor and action.
func expectAudit(repo *repoMocks.MockAuditRepository, ctx any, actor model.Person, action string) *mock.Call {
	return repo.On("Append", ctx, mock.MatchedBy(func(e model.AuditEntry) bool {
		return e.Actor == actor && e.Action == action
	})).Return(nil).Once()
}

func sampleDoc() *model.Document {
	return &model.Document{
		Owner:        owner.Email,
		OwnerName:    owner.Name,
		OwnerSurname: owner.Surname,
		ShareID:      "share-1",
		DisplayName:  "report.pdf",
		StorageKey:   "secure_store/k1",
		Size:         1024,
		UploadedAt:   fixedNow.Add(-time.Minute),
		ExpiresAt:    fixedNow.Add(time.Hour),
		People:       []model.Person{},
	}
}
