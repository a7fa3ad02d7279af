package email

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	failures int
	calls    int
	sent     []*gomail.Message
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("connection refused")
	}
	f.sent = append(f.sent, m...)
	return nil
}

func testConfig() config.SMTPConfig {
	return config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		From:     "hr@example.com",
		FromName: "HR System",
	}
}

func newTestService(t *testing.T, cfg config.SMTPConfig, d dialer) *emailServiceImpl {
	t.Helper()
	svc, err := newEmailService(cfg, d)
	require.NoError(t, err)
	svc.backoff = func(int) time.Duration { return 0 }
	return svc
}

func TestSkipsWhenNotConfigured(t *testing.T) {
	svc, err := NewEmailService(config.SMTPConfig{})
	require.NoError(t, err)
	assert.False(t, svc.Enabled())
	assert.NoError(t, svc.SendNotification("ana@example.com", NotificationData{Title: "Hi"}))
}

func TestSendOnboardingIsMultipart(t *testing.T) {
	d := &fakeDialer{}
	svc := newTestService(t, testConfig(), d)

	err := svc.SendOnboarding("ana.personal@example.com", OnboardingData{
		Name:              "Ana",
		LoginEmail:        "ana@corp.example.com",
		TemporaryPassword: "Tmp-12345",
		Role:              "EMPLOYEE",
		LoginURL:          "http://localhost:3000/login",
	})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	var buf bytes.Buffer
	_, err = d.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()

	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, "text/plain")
	assert.Contains(t, raw, "text/html")
	assert.Contains(t, raw, "Welcome to HR System")
	assert.Contains(t, raw, "ana@corp.example.com")
}

func TestSendRetriesThenSucceeds(t *testing.T) {
	d := &fakeDialer{failures: 2}
	svc := newTestService(t, testConfig(), d)

	err := svc.SendNotification("ana@example.com", NotificationData{Name: "Ana", Title: "Leave approved", Message: "Enjoy"})
	require.NoError(t, err)
	assert.Equal(t, 3, d.calls)
	assert.Len(t, d.sent, 1)
}

func TestSendGivesUpAfterMaxRetries(t *testing.T) {
	d := &fakeDialer{failures: 10}
	svc := newTestService(t, testConfig(), d)

	err := svc.SendNotification("ana@example.com", NotificationData{Title: "Leave approved"})
	require.Error(t, err)
	assert.Equal(t, maxRetries, d.calls)
}

func TestRenderEscapesHTML(t *testing.T) {
	svc := newTestService(t, testConfig(), &fakeDialer{})
	text, html, err := svc.render("notification", NotificationData{Name: "Ana", Title: "Hi", Message: "<script>x</script>"})
	require.NoError(t, err)
	assert.Contains(t, text, "<script>x</script>")
	assert.NotContains(t, html, "<script>x</script>")
}
