package testfixtures

import (
	"context"
	"testing"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/persistence"
	"github.com/example/room-reservations/internal/scheduler"
)

func TestServiceFactoryNewReservationService(t *testing.T) {
	factory := NewServiceFactory()
	store := persistence.NewMemoryStore()

	svc := factory.NewReservationService(ReservationServiceDeps{Store: store})
	principal := NewUserFixture().Principal()

	created, err := svc.Create(context.Background(), principal, application.CreateReservationInput{
		RoomID:    "3",
		Date:      ReferenceDate().String(),
		StartTime: "11:00",
		EndTime:   "12:00",
		Title:     "Daily",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if created.ID != "id-1" {
		t.Fatalf("expected generated ID id-1, got %q", created.ID)
	}
	if !created.CreatedAt.Equal(factory.Clock.Current()) {
		t.Fatalf("expected timestamp %v, got %v", factory.Clock.Current(), created.CreatedAt)
	}
	if created.Status != scheduler.StatusScheduled {
		t.Fatalf("expected Scheduled, got %q", created.Status)
	}

	records, err := store.Load(context.Background(), persistence.DefaultSlot)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := records[len(records)-1].ID; got != created.ID {
		t.Fatalf("store received unexpected ID: %q", got)
	}
}

func TestServiceFactoryNewAuthService(t *testing.T) {
	factory := NewServiceFactory()

	svc, err := factory.NewAuthService(AuthServiceDeps{})
	if err != nil {
		t.Fatalf("NewAuthService returned error: %v", err)
	}

	session, err := svc.Login(context.Background(), "joao@antonelly.com", "user123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if session.User.Role != application.RoleRegular {
		t.Fatalf("expected regular role, got %q", session.User.Role)
	}
}

func TestReservationFixtureConversions(t *testing.T) {
	owner := NewUserFixture(WithUserID("u-9"), WithUserSector("RH"))
	fixture := NewReservationFixture(
		WithReservationOwner(owner),
		WithReservationWindow("09:00", "10:30"),
		WithReservationStatus(scheduler.StatusCancelled),
	)

	r := fixture.Scheduler()
	if r.UserID != "u-9" || r.Sector != "RH" {
		t.Fatalf("owner not applied: %+v", r)
	}
	if r.Window() != "09:00–10:30" {
		t.Fatalf("unexpected window %q", r.Window())
	}

	records := PersistenceRecords(fixture)
	if len(records) != 1 || records[0].StartTime != "09:00" || records[0].Status != "Cancelado" {
		t.Fatalf("unexpected record: %+v", records)
	}
}
