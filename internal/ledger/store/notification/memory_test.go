package notification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"auditlink/internal/ledger/models"
	id "auditlink/pkg/domain"
	"auditlink/pkg/platform/sentinel"
	txcontext "auditlink/pkg/platform/tx"
)

type NotificationStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	now   time.Time
}

func TestNotificationStoreSuite(t *testing.T) {
	suite.Run(t, new(NotificationStoreSuite))
}

func (s *NotificationStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
}

func (s *NotificationStoreSuite) notify(recipient id.Principal, msg string, at time.Time) *models.Notification {
	n := models.NewNotification(recipient, "C1", models.NotificationClaimEndorsed, msg, at)
	s.Require().NoError(s.store.Append(s.ctx, n))
	return n
}

func (s *NotificationStoreSuite) TestListByRecipient() {
	s.notify("insurer", "second", s.now)
	s.notify("insurer", "first", s.now.Add(-time.Second))
	s.notify("insurer", "third", s.now)
	s.notify("provider", "other", s.now)

	list, err := s.store.ListByRecipient(s.ctx, "insurer")
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal("first", list[0].Message)
	s.Equal("second", list[1].Message)
	s.Equal("third", list[2].Message)

	list, err = s.store.ListByRecipient(s.ctx, "nobody")
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *NotificationStoreSuite) TestMarkRead() {
	n := s.notify("insurer", "m", s.now)

	s.Run("persists read flag", func() {
		changed, err := n.MarkRead("insurer", s.now)
		s.Require().NoError(err)
		s.True(changed)
		s.Require().NoError(s.store.MarkRead(s.ctx, n))

		found, err := s.store.FindByID(s.ctx, n.ID)
		s.Require().NoError(err)
		s.True(found.Read)
		s.Require().NotNil(found.ReadAt)
	})

	s.Run("unknown id", func() {
		other := models.NewNotification("insurer", "C1", models.NotificationClaimEndorsed, "x", s.now)
		s.ErrorIs(s.store.MarkRead(s.ctx, other), sentinel.ErrNotFound)
		_, err := s.store.FindByID(s.ctx, other.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *NotificationStoreSuite) TestRollback() {
	kept := s.notify("insurer", "kept", s.now)

	txCtx, journal := txcontext.WithJournal(s.ctx)
	s.Require().NoError(s.store.Append(txCtx, models.NewNotification("insurer", "C2", models.NotificationClaimEndorsed, "dropped", s.now)))
	read, err := s.store.FindByID(txCtx, kept.ID)
	s.Require().NoError(err)
	_, err = read.MarkRead("insurer", s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.MarkRead(txCtx, read))
	journal.Rollback()

	list, err := s.store.ListByRecipient(s.ctx, "insurer")
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.False(list[0].Read)
}

func (s *NotificationStoreSuite) TestDeleteByRecipient() {
	s.notify("insurer", "a", s.now)
	s.notify("insurer", "b", s.now)
	s.notify("provider", "c", s.now)

	removed, err := s.store.DeleteByRecipient(s.ctx, "insurer")
	s.Require().NoError(err)
	s.Equal(2, removed)

	list, err := s.store.ListByRecipient(s.ctx, "provider")
	s.Require().NoError(err)
	s.Len(list, 1)
}
