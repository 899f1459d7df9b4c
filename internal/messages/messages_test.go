package messages

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"fishcatch/internal/agent"
	"fishcatch/internal/buyers"
	"fishcatch/internal/catches"
	"fishcatch/internal/coach"
	"fishcatch/internal/config"
	"fishcatch/internal/db"
	"fishcatch/internal/prices"
)

func setupDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func seedBuyer(t *testing.T, store *buyers.Store, name, phone string) *buyers.Buyer {
	t.Helper()
	b, err := store.Create(context.Background(), buyers.Buyer{Name: name, Phone: phone, Carrier: "verizon"})
	if err != nil {
		t.Fatalf("seeding buyer: %v", err)
	}
	return b
}

func TestCreateDraftAndGet(t *testing.T) {
	database := setupDB(t)
	store := NewStore(database)
	buyer := seedBuyer(t, buyers.NewStore(database), "John", "5551234567")

	m, err := store.CreateDraft(context.Background(), buyer.ID, "", "Hey John")
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	if m.Status != "draft" {
		t.Errorf("Status = %q, want draft", m.Status)
	}

	got, err := store.Get(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.Body != "Hey John" || got.SentAt != nil {
		t.Errorf("got %+v", got)
	}
}

func TestMarkSentAndRecency(t *testing.T) {
	database := setupDB(t)
	store := NewStore(database)
	buyer := seedBuyer(t, buyers.NewStore(database), "John", "5551234567")
	ctx := context.Background()

	m, err := store.CreateDraft(ctx, buyer.ID, "", "Hey")
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}

	// Drafts don't count as contact.
	recent, err := store.RecentlyContacted(ctx, buyer.ID, 24*time.Hour)
	if err != nil {
		t.Fatalf("RecentlyContacted: %v", err)
	}
	if recent {
		t.Error("unsent draft must not count as contact")
	}

	if err := store.MarkSent(ctx, m.ID); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}

	recent, err = store.RecentlyContacted(ctx, buyer.ID, 24*time.Hour)
	if err != nil {
		t.Fatalf("RecentlyContacted: %v", err)
	}
	if !recent {
		t.Error("sent message within the window must count as contact")
	}

	got, err := store.Get(ctx, m.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != "sent" || got.SentAt == nil {
		t.Errorf("got %+v", got)
	}
}

func TestGatewayAddress(t *testing.T) {
	addr, err := GatewayAddress("5551234567", "verizon")
	if err != nil {
		t.Fatalf("GatewayAddress: %v", err)
	}
	if addr != "5551234567@vtext.com" {
		t.Errorf("addr = %q", addr)
	}

	if _, err := GatewayAddress("5551234567", "rotary"); err == nil {
		t.Error("expected error for unknown carrier")
	}
}

func TestSenderUnconfigured(t *testing.T) {
	s := NewSender(config.SMTPConfig{})
	if s.Configured() {
		t.Error("empty config must not report configured")
	}
	if err := s.Send("5551234567", "verizon", "hi"); err == nil {
		t.Error("expected error from unconfigured sender")
	}
}

func TestSenderDeliversThroughGateway(t *testing.T) {
	var gotTo []string
	var gotMsg string

	s := NewSender(config.SMTPConfig{
		Host: "smtp.example.com", Port: 587,
		Username: "captain@example.com", Password: "app-password",
	})
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotTo = to
		gotMsg = string(msg)
		return nil
	}

	if err := s.Send("5551234567", "tmobile", "Fresh Halibut today"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(gotTo) != 1 || gotTo[0] != "5551234567@tmomail.net" {
		t.Errorf("to = %v", gotTo)
	}
	if !strings.Contains(gotMsg, "Fresh Halibut today") {
		t.Errorf("msg = %q", gotMsg)
	}
}

func setupRouter(t *testing.T) (*chi.Mux, *db.DB, Deps) {
	t.Helper()
	database := setupDB(t)
	deps := Deps{
		Messages:        NewStore(database),
		Buyers:          buyers.NewStore(database),
		Catches:         catches.NewStore(database),
		Prices:          prices.NewStore(database),
		Agent:           agent.New(coach.New(coach.NewMemStore()), nil, "", "fishing_agent_001"),
		Sender:          NewSender(config.SMTPConfig{}),
		RecontactWindow: 24 * time.Hour,
	}
	r := chi.NewRouter()
	RegisterRoutes(r, deps)
	return r, database, deps
}

func TestContactBuyersEndToEnd(t *testing.T) {
	router, _, deps := setupRouter(t)
	ctx := context.Background()

	seedBuyer(t, deps.Buyers, "John", "5551234567")
	if _, err := deps.Catches.Create(ctx, "Halibut", 450, time.Now().UTC()); err != nil {
		t.Fatalf("seeding catch: %v", err)
	}
	if _, err := deps.Prices.Add(ctx, "Halibut", 4.20, "pacific_pride", ""); err != nil {
		t.Fatalf("seeding price: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact-buyers", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"450", "$4.20", "Halibut", `"blocked":false`} {
		if !strings.Contains(body, want) {
			t.Errorf("response missing %q: %s", want, body)
		}
	}

	// The accepted draft is persisted for operator review.
	msgs, err := deps.Messages.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Status != "draft" {
		t.Errorf("messages = %+v, want one stored draft", msgs)
	}
}

func TestContactBuyersWithoutPriceIsBlocked(t *testing.T) {
	router, _, deps := setupRouter(t)
	ctx := context.Background()

	seedBuyer(t, deps.Buyers, "John", "5551234567")
	if _, err := deps.Catches.Create(ctx, "Halibut", 450, time.Now().UTC()); err != nil {
		t.Fatalf("seeding catch: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact-buyers", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"blocked":true`) {
		t.Errorf("body = %s", rec.Body.String())
	}
	msgs, err := deps.Messages.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(msgs) != 0 {
		t.Error("no drafts may be stored when the batch is blocked")
	}
}

func TestContactBuyersWithoutCatch(t *testing.T) {
	router, _, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact-buyers", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
