package notificator

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fracta-city/fracta/internal/metrics"
	"github.com/fracta-city/fracta/internal/models"
	"github.com/fracta-city/fracta/pkg/logger"
)

type sent struct {
	to, subject, message string
}

type fakeChat struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (f *fakeChat) SendNotification(_ context.Context, chatID, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{to: chatID, message: message})
	return f.err
}

type fakeMail struct {
	sent  []sent
	panic bool
}

func (f *fakeMail) SendNotification(_ context.Context, to, subject, message string) error {
	if f.panic {
		panic("smtp exploded")
	}
	f.sent = append(f.sent, sent{to: to, subject: subject, message: message})
	return nil
}

func newNotificator(chat *fakeChat, mail *fakeMail) (*Notificator, *metrics.Metrics) {
	m := metrics.New()
	n := &Notificator{logger: logger.NewNop(), metrics: m, adminChatID: "-100"}
	if chat != nil {
		n.telegram = chat
	}
	if mail != nil {
		n.email = mail
	}
	return n, m
}

func strPtr(s string) *string { return &s }

func TestNotificator_RoutesKYCSubmissionToAdminChat(t *testing.T) {
	chat, mail := &fakeChat{}, &fakeMail{}
	n, _ := newNotificator(chat, mail)

	n.SendNotification(context.Background(), &models.Notification{
		Kind:        models.NotificationKYCSubmitted,
		Wallet:      "0xabc",
		Email:       strPtr("investor@example.com"),
		KYCRecordID: 4,
		KYCType:     models.KYCTypeProsperaPermit,
	})

	require.Len(t, chat.sent, 1)
	assert.Equal(t, "-100", chat.sent[0].to)
	assert.Contains(t, chat.sent[0].message, "KYC record #4")
	assert.Empty(t, mail.sent)
}

func TestNotificator_RoutesInvestorEventsToEmail(t *testing.T) {
	chat, mail := &fakeChat{}, &fakeMail{}
	n, _ := newNotificator(chat, mail)

	n.SendNotification(context.Background(), &models.Notification{
		Kind:            models.NotificationPurchaseConfirmed,
		Wallet:          "0xabc",
		Email:           strPtr("investor@example.com"),
		PropertyName:    "Duna Residences Studio",
		Tokens:          5,
		Amount:          decimal.NewFromInt(595),
		TransactionHash: "0xfeed",
	})

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "investor@example.com", mail.sent[0].to)
	assert.Equal(t, "Investment confirmed: Duna Residences Studio", mail.sent[0].subject)
	assert.Contains(t, mail.sent[0].message, "595.00 USD")
	assert.Empty(t, chat.sent)
}

func TestNotificator_SkipsWithoutRecipient(t *testing.T) {
	mail := &fakeMail{}
	n, _ := newNotificator(nil, mail)

	assert.NotPanics(t, func() {
		n.SendNotification(context.Background(), &models.Notification{Kind: models.NotificationKYCReviewed, Wallet: "0xabc"})
		n.SendNotification(context.Background(), &models.Notification{Kind: models.NotificationKYCSubmitted, Wallet: "0xabc"})
	})
	assert.Empty(t, mail.sent)
}

func TestNotificator_RecoversAndCountsFailures(t *testing.T) {
	chat := &fakeChat{err: errors.New("telegram down")}
	mail := &fakeMail{panic: true}
	n, m := newNotificator(chat, mail)

	assert.NotPanics(t, func() {
		n.SendNotification(context.Background(), &models.Notification{Kind: models.NotificationKYCSubmitted, Wallet: "0xabc"})
		n.SendNotification(context.Background(), &models.Notification{Kind: models.NotificationKYCReviewed, Wallet: "0xabc", Email: strPtr("a@b.c")})
	})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationFailures.WithLabelValues(channelTelegram)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationFailures.WithLabelValues(channelEmail)))
}

func TestEmailNotificator_FormatsMessage(t *testing.T) {
	e := NewEmailNotificator(logger.NewNop(), "smtp.example.com", 587, "user", "pw", "noreply@fracta.city")

	var gotAddr string
	var gotMsg []byte
	e.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotMsg = msg
		assert.Equal(t, "noreply@fracta.city", from)
		assert.Equal(t, []string{"investor@example.com"}, to)
		return nil
	}

	require.NoError(t, e.SendNotification(context.Background(), "investor@example.com", "Hello", "Body text"))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.True(t, strings.HasPrefix(string(gotMsg), "From: noreply@fracta.city\r\nTo: investor@example.com\r\nSubject: Hello\r\n"))
	assert.True(t, strings.HasSuffix(string(gotMsg), "\r\n\r\nBody text"))

	e.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }
	assert.Error(t, e.SendNotification(context.Background(), "investor@example.com", "Hello", "Body"))
}
