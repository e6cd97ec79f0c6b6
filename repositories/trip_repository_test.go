// File: /repositories/trip_repository_test.go
package repositories

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"wanderlog-api/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// A pooled :memory: connection would get its own empty database;
	// pin the pool to a single connection.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Trip{},
		&models.TripLocation{},
		&models.TripParticipant{},
		&models.TripMessage{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func locs(specs ...[2]string) []models.LocationSpec {
	out := make([]models.LocationSpec, 0, len(specs))
	for _, s := range specs {
		out = append(out, models.LocationSpec{Country: s[0], City: s[1]})
	}
	return out
}

func TestCreateSimpleTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewTripRepository(db)

	tripID, err := repo.CreateSimple("alice", "Italy", "Rome", "2026-07-10", "Colosseum tour")
	if err != nil {
		t.Fatalf("CreateSimple failed: %v", err)
	}

	trip, err := repo.GetTripDetails(tripID)
	if err != nil {
		t.Fatalf("GetTripDetails failed: %v", err)
	}
	if trip == nil {
		t.Fatal("expected trip, got nil")
	}
	if trip.Title != "Rome, Italy" {
		t.Errorf("expected title %q, got %q", "Rome, Italy", trip.Title)
	}
	if trip.Status != models.TripStatusDraft {
		t.Errorf("expected draft status, got %q", trip.Status)
	}
	if trip.Currency != "EUR" {
		t.Errorf("expected default currency EUR, got %q", trip.Currency)
	}
	if len(trip.Locations) != 1 {
		t.Fatalf("expected 1 location, got %d", len(trip.Locations))
	}
	if trip.Locations[0].OrderIndex != 0 {
		t.Errorf("expected order index 0, got %d", trip.Locations[0].OrderIndex)
	}
	if trip.Locations[0].Date == nil || *trip.Locations[0].Date != "2026-07-10" {
		t.Errorf("expected date 2026-07-10, got %v", trip.Locations[0].Date)
	}
	if len(trip.Participants) != 1 {
		t.Fatalf("expected 1 participant, got %d", len(trip.Participants))
	}
	if trip.Participants[0].Username != "alice" || trip.Participants[0].Role != models.TripRoleOwner {
		t.Errorf("expected alice as owner participant, got %+v", trip.Participants[0])
	}
}

func TestCreateSimpleTripValidation(t *testing.T) {
	db := newTestDB(t)
	repo := NewTripRepository(db)

	if _, err := repo.CreateSimple("alice", "", "Rome", "", ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for missing country, got %v", err)
	}
	if _, err := repo.CreateSimple("alice", "Italy", "Rome", "not-a-date", ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for bad date, got %v", err)
	}
}

func TestCreateCollaborativeTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewTripRepository(db)

	tripID, err := repo.CreateCollaborative("alice", "Balkan Roadtrip", "Two weeks by car", 1500,
		"EUR", locs([2]string{"Serbia", "Belgrade"}, [2]string{"Bulgaria", "Sofia"}),
		[]string{"bob", "carol", "bob", "alice", ""}, models.TripStatusPublished)
	if err != nil {
		t.Fatalf("CreateCollaborative failed: %v", err)
	}

	trip, err := repo.GetTripDetails(tripID)
	if err != nil {
		t.Fatalf("GetTripDetails failed: %v", err)
	}
	if trip.OwnerUsername != "alice" {
		t.Errorf("expected owner alice, got %q", trip.OwnerUsername)
	}
	if len(trip.Locations) != 2 {
		t.Fatalf("expected 2 locations, got %d", len(trip.Locations))
	}
	for i, loc := range trip.Locations {
		if loc.OrderIndex != i {
			t.Errorf("location %d: expected order index %d, got %d", i, i, loc.OrderIndex)
		}
	}

	// Duplicates, the owner and empty names are dropped from the submitted list
	if len(trip.Participants) != 3 {
		t.Fatalf("expected 3 participants (owner + 2 editors), got %d", len(trip.Participants))
	}
	roles := map[string]string{}
	for _, p := range trip.Participants {
		roles[p.Username] = p.Role
	}
	if roles["alice"] != models.TripRoleOwner {
		t.Errorf("expected alice as owner, got %q", roles["alice"])
	}
	if roles["bob"] != models.TripRoleEditor || roles["carol"] != models.TripRoleEditor {
		t.Errorf("expected bob and carol as editors, got %v", roles)
	}
}

func TestCreateCollaborativeTripRollback(t *testing.T) {
	db := newTestDB(t)
	repo := NewTripRepository(db)

	// Second location is invalid, so the whole aggregate must roll back.
	_, err := repo.CreateCollaborative("alice", "Broken", "", 100, "EUR",
		[]models.LocationSpec{
			{Country: "France", City: "Paris"},
			{Country: "France", City: ""},
		}, nil, models.TripStatusDraft)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	var tripCount, locationCount, participantCount int64
	db.Model(&models.Trip{}).Count(&tripCount)
	db.Model(&models.TripLocation{}).Count(&locationCount)
	db.Model(&models.TripParticipant{}).Count(&participantCount)
	if tripCount != 0 || locationCount != 0 || participantCount != 0 {
		t.Errorf("expected clean rollback, got trips=%d locations=%d participants=%d",
			tripCount, locationCount, participantCount)
	}
}

func TestCreateCollaborativeTripHeaderValidation(t *testing.T) {
	db := newTestDB(t)
	repo := NewTripRepository(db)

	cases := []struct {
		name     string
		title    string
		budget   float64
		currency string
		status   string
	}{
		{"missing title", "", 100, "EUR", models.TripStatusDraft},
		{"negative budget", "Trip", -1, "EUR", models.TripStatusDraft},
		{"missing currency", "Trip", 100, "", models.TripStatusDraft},
		{"bad status", "Trip", 100, "EUR", "archived"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.CreateCollaborative("alice", tc.title, "", tc.budget, tc.currency,
				nil, nil, tc.status)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestRoleOf(t *testing.T) {
	db := newTestDB(t)
	repo := NewTripRepository(db)

	tripID, err := repo.CreateCollaborative("alice", "Trip", "", 0, "EUR",
		locs([2]string{"Spain", "Madrid"}), []string{"bob"}, models.TripStatusDraft)
	if err != nil {
		t.Fatalf("CreateCollaborative failed: %v", err)
	}

	if role, _ := repo.RoleOf(tripID, "alice"); role != models.TripRoleOwner {
		t.Errorf("expected owner role for alice, got %q", role)
	}
	if role, _ := repo.RoleOf(tripID, "bob"); role != models.TripRoleEditor {
		t.Errorf("expected editor role for bob, got %q", role)
	}
	if role, err := repo.RoleOf(tripID, "carol"); role != "" || err != nil {
		t.Errorf("expected empty role for non-participant, got %q err=%v", role, err)
	}
	if _, err := repo.RoleOf("missing-trip", "alice"); !errors.Is(err, ErrTripNotFound) {
		t.Errorf("expected ErrTripNotFound, got %v", err)
	}
}

func TestEditReplacesAggregate(t *testing.T) {
	db := newTestDB(t)
	repo := NewTripRepository(db)

	tripID, err := repo.CreateCollaborative("alice", "Original", "Old description", 500, "EUR",
		locs([2]string{"Italy", "Rome"}, [2]string{"Italy", "Florence"}, [2]string{"Italy", "Venice"}),
		[]string{"bob"}, models.TripStatusDraft)
	if err != nil {
		t.Fatalf("CreateCollaborative failed: %v", err)
	}

	// Owner reorders and shrinks the location list and swaps the editors.
	err = repo.Edit(tripID, "alice", "Updated", "New description", 800, "USD",
		locs([2]string{"Italy", "Venice"}, [2]string{"Italy", "Rome"}),
		[]string{"carol"}, models.TripStatusPublished)
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}

	trip, err := repo.GetTripDetails(tripID)
	if err != nil {
		t.Fatalf("GetTripDetails failed: %v", err)
	}
	if trip.Title != "Updated" || trip.Budget != 800 || trip.Currency != "USD" ||
		trip.Status != models.TripStatusPublished {
		t.Errorf("header not updated: %+v", trip)
	}
	if len(trip.Locations) != 2 {
		t.Fatalf("expected 2 locations after edit, got %d", len(trip.Locations))
	}
	if trip.Locations[0].City != "Venice" || trip.Locations[1].City != "Rome" {
		t.Errorf("expected Venice,Rome order, got %s,%s", trip.Locations[0].City, trip.Locations[1].City)
	}
	for i, loc := range trip.Locations {
		if loc.OrderIndex != i {
			t.Errorf("location %d: expected dense order index %d, got %d", i, i, loc.OrderIndex)
		}
	}
	roles := map[string]string{}
	for _, p := range trip.Participants {
		roles[p.Username] = p.Role
	}
	if _, stillThere := roles["bob"]; stillThere {
		t.Error("expected bob to be removed from participants")
	}
	if roles["carol"] != models.TripRoleEditor {
		t.Errorf("expected carol as editor, got %q", roles["carol"])
	}
	if roles["alice"] != models.TripRoleOwner {
		t.Errorf("expected alice to stay owner, got %q", roles["alice"])
	}
}

func TestEditByEditorIgnoresParticipantList(t *testing.T) {
	db := newTestDB(t)
	repo := NewTripRepository(db)

	tripID, err := repo.CreateCollaborative("alice", "Trip", "", 0, "EUR",
		locs([2]string{"Italy", "Rome"}), []string{"bob"}, models.TripStatusDraft)
	if err != nil {
		t.Fatalf("CreateCollaborative failed: %v", err)
	}

	// bob is an editor: he may change content but his participant list
	// submission must be ignored.
	err = repo.Edit(tripID, "bob", "Edited by bob", "", 50, "EUR",
		locs([2]string{"Italy", "Milan"}), []string{"mallory"}, models.TripStatusDraft)
	if err != nil {
		t.Fatalf("Edit by editor failed: %v", err)
	}

	trip, _ := repo.GetTripDetails(tripID)
	if trip.Title != "Edited by bob" {
		t.Errorf("expected editor's header change to apply, got %q", trip.Title)
	}
	if len(trip.Locations) != 1 || trip.Locations[0].City != "Milan" {
		t.Errorf("expected editor's location change to apply, got %+v", trip.Locations)
	}
	usernames := map[string]bool{}
	for _, p := range trip.Participants {
		usernames[p.Username] = true
	}
	if usernames["mallory"] {
		t.Error("editor must not be able to add participants")
	}
	if !usernames["alice"] || !usernames["bob"] {
		t.Errorf("participant set changed by a non-owner edit: %v", usernames)
	}
}

func TestEditByNonParticipantRejected(t *testing.T) {
	db := newTestDB(t)
	repo := NewTripRepository(db)

	tripID, err := repo.CreateCollaborative("alice", "Trip", "", 0, "EUR",
		locs([2]string{"Italy", "Rome"}), nil, models.TripStatusDraft)
	if err != nil {
		t.Fatalf("CreateCollaborative failed: %v", err)
	}

	err = repo.Edit(tripID, "mallory", "Hacked", "", 0, "EUR",
		locs([2]string{"X", "Y"}), nil, models.TripStatusDraft)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	// Nothing may change when the edit is rejected.
	trip, _ := repo.GetTripDetails(tripID)
	if trip.Title != "Trip" {
		t.Errorf("rejected edit changed the header: %q", trip.Title)
	}
	if len(trip.Locations) != 1 || trip.Locations[0].City != "Rome" {
		t.Errorf("rejected edit changed the locations: %+v", trip.Locations)
	}
}

func TestEditMissingTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewTripRepository(db)

	err := repo.Edit("missing", "alice", "Title", "", 0, "EUR", nil, nil, models.TripStatusDraft)
	if !errors.Is(err, ErrTripNotFound) {
		t.Errorf("expected ErrTripNotFound, got %v", err)
	}
}

func TestEditRollbackOnInvalidLocation(t *testing.T) {
	db := newTestDB(t)
	repo := NewTripRepository(db)

	tripID, err := repo.CreateCollaborative("alice", "Trip", "", 0, "EUR",
		locs([2]string{"Italy", "Rome"}, [2]string{"Italy", "Milan"}), nil, models.TripStatusDraft)
	if err != nil {
		t.Fatalf("CreateCollaborative failed: %v", err)
	}

	err = repo.Edit(tripID, "alice", "Broken edit", "", 0, "EUR",
		[]models.LocationSpec{
			{Country: "Spain", City: "Madrid"},
			{Country: "", City: "Nowhere"},
		}, nil, models.TripStatusDraft)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	// The rollback must restore the original aggregate, header included.
	trip, _ := repo.GetTripDetails(tripID)
	if trip.Title != "Trip" {
		t.Errorf("failed edit changed the header: %q", trip.Title)
	}
	if len(trip.Locations) != 2 || trip.Locations[0].City != "Rome" || trip.Locations[1].City != "Milan" {
		t.Errorf("failed edit changed the locations: %+v", trip.Locations)
	}
}

func TestDeleteOwnerOnly(t *testing.T) {
	db := newTestDB(t)
	repo := NewTripRepository(db)

	tripID, err := repo.CreateCollaborative("alice", "Trip", "", 0, "EUR",
		locs([2]string{"Italy", "Rome"}), []string{"bob"}, models.TripStatusDraft)
	if err != nil {
		t.Fatalf("CreateCollaborative failed: %v", err)
	}
	if err := repo.AppendMessage(tripID, "bob", "hello"); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	if err := repo.Delete(tripID, "bob"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for editor delete, got %v", err)
	}
	if err := repo.Delete(tripID, "mallory"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for stranger delete, got %v", err)
	}

	// The aggregate survives failed deletions intact.
	trip, _ := repo.GetTripDetails(tripID)
	if trip == nil || len(trip.Locations) != 1 || len(trip.Participants) != 2 {
		t.Fatalf("aggregate damaged by rejected delete: %+v", trip)
	}

	if err := repo.Delete(tripID, "alice"); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	trip, _ = repo.GetTripDetails(tripID)
	if trip != nil {
		t.Error("expected trip gone after owner delete")
	}

	var locationCount, participantCount, messageCount int64
	db.Model(&models.TripLocation{}).Where("trip_id = ?", tripID).Count(&locationCount)
	db.Model(&models.TripParticipant{}).Where("trip_id = ?", tripID).Count(&participantCount)
	db.Model(&models.TripMessage{}).Where("trip_id = ?", tripID).Count(&messageCount)
	if locationCount != 0 || participantCount != 0 || messageCount != 0 {
		t.Errorf("orphaned child rows after delete: locations=%d participants=%d messages=%d",
			locationCount, participantCount, messageCount)
	}
}

func TestDeleteMissingTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewTripRepository(db)

	if err := repo.Delete("missing", "alice"); !errors.Is(err, ErrTripNotFound) {
		t.Errorf("expected ErrTripNotFound, got %v", err)
	}
}

func TestTripListings(t *testing.T) {
	db := newTestDB(t)
	repo := NewTripRepository(db)

	draftID, err := repo.CreateCollaborative("alice", "Draft plan", "", 0, "EUR",
		locs([2]string{"Italy", "Rome"}), nil, models.TripStatusDraft)
	if err != nil {
		t.Fatalf("CreateCollaborative failed: %v", err)
	}
	publishedID, err := repo.CreateCollaborative("alice", "Published plan", "", 0, "EUR",
		locs([2]string{"Italy", "Milan"}), []string{"bob"}, models.TripStatusPublished)
	if err != nil {
		t.Fatalf("CreateCollaborative failed: %v", err)
	}
	if _, err := repo.CreateCollaborative("carol", "Carol's trip", "", 0, "EUR",
		locs([2]string{"France", "Nice"}), nil, models.TripStatusPublished); err != nil {
		t.Fatalf("CreateCollaborative failed: %v", err)
	}

	// Owner sees both statuses.
	mine, err := repo.GetTripsForUser("alice")
	if err != nil {
		t.Fatalf("GetTripsForUser failed: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("expected alice to see 2 trips, got %d", len(mine))
	}

	// An editor sees trips they participate in, drafts included.
	bobs, err := repo.GetTripsForUser("bob")
	if err != nil {
		t.Fatalf("GetTripsForUser failed: %v", err)
	}
	if len(bobs) != 1 || bobs[0].ID != publishedID {
		t.Errorf("expected bob to see only the trip he participates in, got %+v", bobs)
	}

	// Other viewers only ever see published trips.
	published, err := repo.GetPublishedTripsForUser("alice")
	if err != nil {
		t.Fatalf("GetPublishedTripsForUser failed: %v", err)
	}
	if len(published) != 1 || published[0].ID != publishedID {
		t.Errorf("expected only the published trip, got %+v", published)
	}
	for _, trip := range published {
		if trip.ID == draftID {
			t.Error("draft leaked into the published listing")
		}
	}

	all, err := repo.GetAllTrips()
	if err != nil {
		t.Fatalf("GetAllTrips failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 published trips across all users, got %d", len(all))
	}
	for _, trip := range all {
		if trip.Status != models.TripStatusPublished {
			t.Errorf("non-published trip in GetAllTrips: %+v", trip)
		}
	}
}

func TestChatAppendAndList(t *testing.T) {
	db := newTestDB(t)
	repo := NewTripRepository(db)

	tripID, err := repo.CreateCollaborative("alice", "Trip", "", 0, "EUR",
		locs([2]string{"Italy", "Rome"}), []string{"bob"}, models.TripStatusDraft)
	if err != nil {
		t.Fatalf("CreateCollaborative failed: %v", err)
	}

	messages := []struct{ user, text string }{
		{"alice", "When do we leave?"},
		{"bob", "Friday morning"},
		{"alice", "Works for me"},
	}
	for _, m := range messages {
		if err := repo.AppendMessage(tripID, m.user, m.text); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	log, err := repo.ListMessages(tripID)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(log) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(log))
	}
	// Messages created within the same timestamp tick fall back to insertion
	// order via the id tie-break.
	for i, m := range messages {
		if log[i].Username != m.user || log[i].Message != m.text {
			t.Errorf("message %d out of order: got %s %q", i, log[i].Username, log[i].Message)
		}
	}

	if err := repo.AppendMessage(tripID, "alice", "   "); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for blank message, got %v", err)
	}
}

func TestRenameUserAcrossTripTables(t *testing.T) {
	db := newTestDB(t)
	repo := NewTripRepository(db)

	tripID, err := repo.CreateCollaborative("alice", "Trip", "", 0, "EUR",
		locs([2]string{"Italy", "Rome"}), []string{"bob"}, models.TripStatusDraft)
	if err != nil {
		t.Fatalf("CreateCollaborative failed: %v", err)
	}
	if err := repo.AppendMessage(tripID, "alice", "hi"); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	if err := repo.RenameUser("alice", "alice_renamed"); err != nil {
		t.Fatalf("RenameUser failed: %v", err)
	}

	trip, _ := repo.GetTripDetails(tripID)
	if trip.OwnerUsername != "alice_renamed" {
		t.Errorf("owner username not renamed: %q", trip.OwnerUsername)
	}
	if role, _ := repo.RoleOf(tripID, "alice_renamed"); role != models.TripRoleOwner {
		t.Errorf("renamed user lost owner role: %q", role)
	}
	log, _ := repo.ListMessages(tripID)
	if len(log) != 1 || log[0].Username != "alice_renamed" {
		t.Errorf("chat author not renamed: %+v", log)
	}
}

func TestGetTripDetailsMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewTripRepository(db)

	trip, err := repo.GetTripDetails("missing")
	if err != nil {
		t.Fatalf("expected no error for missing trip, got %v", err)
	}
	if trip != nil {
		t.Errorf("expected nil trip, got %+v", trip)
	}
}
