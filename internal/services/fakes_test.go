package services

import (
	"context"
	"errors"
	"io"
	"os"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/config"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

func TestMain(m *testing.M) {
	utils.PasswordHashCost = 4
	utils.Logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []Email
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) Sent() []Email {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Email(nil), f.sent...)
}

var sixDigits = regexp.MustCompile(`\b\d{6}\b`)

// lastCode pulls the code out of the newest email's plain body.
func (f *fakeMailer) lastCode(t *testing.T) string {
	t.Helper()
	sent := f.Sent()
	if len(sent) == 0 {
		t.Fatal("no email sent")
	}
	code := sixDigits.FindString(sent[len(sent)-1].Plain)
	if code == "" {
		t.Fatalf("no code in email %q", sent[len(sent)-1].Plain)
	}
	return code
}

type fakeGateway struct {
	mu       sync.Mutex
	requests []CheckoutRequest
	err      error
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.requests = append(g.requests, req)
	return &CheckoutSession{ID: "cs_test_" + req.ReferenceID, URL: "https://checkout.test/" + req.ReferenceID}, nil
}

type fakeStore struct {
	objects map[string]string
	err     error
}

func (s *fakeStore) Upload(_ context.Context, objectName, contentType string, body io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	if s.objects == nil {
		s.objects = map[string]string{}
	}
	s.objects[objectName] = contentType + ":" + string(b)
	return "https://storage.test/bucket/" + objectName, nil
}

var errBoom = errors.New("boom")

func testConfig() *config.Config {
	return &config.Config{
		AppName:          "hostel-service-test",
		AppUrl:           "http://localhost:5173",
		JWTSecret:        "test-secret-test-secret-test-secret",
		Currency:         "kes",
		AccessTokenTTL:   15 * time.Minute,
		RefreshTokenTTL:  24 * time.Hour,
		MaxLoginAttempts: 3,
		AttemptWindow:    15 * time.Minute,
		LockDuration:     30 * time.Minute,
	}
}
