package api

import (
	"testing"
	"time"

	"github.com/animovital/semaforo/internal/services"
)

func TestMemoryStoreSessionIsolation(t *testing.T) {
	store := newMemoryStore()
	sess := &services.Session{ID: "s1", Answers: map[int]int{1: 2}, CreatedAt: time.Now()}
	if err := store.InsertSession(sess); err != nil {
		t.Fatal(err)
	}

	// mutating the caller's copy must not leak into the store
	sess.Answers[1] = 0
	got, err := store.GetSession("s1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Answers[1] != 2 {
		t.Errorf("stored answer mutated: %v", got.Answers)
	}

	// and mutating a read copy must not leak either
	got.Answers[1] = 3
	again, _ := store.GetSession("s1")
	if again.Answers[1] != 2 {
		t.Errorf("read copy leaked: %v", again.Answers)
	}

	missing, err := store.GetSession("nope")
	if err != nil || missing != nil {
		t.Errorf("missing session: %v, %v", missing, err)
	}
}

func TestMemoryStoreAnswerUpsert(t *testing.T) {
	store := newMemoryStore()
	_ = store.UpsertAnswer(&services.AnswerRow{SessionID: "s1", QuestionID: 1, RawValue: 2})
	_ = store.UpsertAnswer(&services.AnswerRow{SessionID: "s1", QuestionID: 1, RawValue: 0})
	_ = store.UpsertAnswer(&services.AnswerRow{SessionID: "s1", QuestionID: 2, RawValue: 3})

	rows, err := store.ListAnswerRows()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0].QuestionID != 1 || rows[0].RawValue != 0 {
		t.Errorf("row 0 = %+v", rows[0])
	}
}

func TestMemoryStoreDeleteExpiredSessions(t *testing.T) {
	store := newMemoryStore()
	old := time.Now().Add(-72 * time.Hour)
	fresh := time.Now()

	_ = store.InsertSession(&services.Session{ID: "old-open", CreatedAt: old})
	_ = store.InsertSession(&services.Session{ID: "old-done", Completed: true, CreatedAt: old})
	_ = store.InsertSession(&services.Session{ID: "fresh-open", CreatedAt: fresh})
	_ = store.UpsertAnswer(&services.AnswerRow{SessionID: "old-open", QuestionID: 1, RawValue: 1})

	n, err := store.DeleteExpiredSessions(time.Now().Add(-48 * time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("removed %d, want 1", n)
	}
	if s, _ := store.GetSession("old-open"); s != nil {
		t.Error("expired session survived")
	}
	if s, _ := store.GetSession("old-done"); s == nil {
		t.Error("completed session must be kept")
	}
	if s, _ := store.GetSession("fresh-open"); s == nil {
		t.Error("fresh session must be kept")
	}
	rows, _ := store.ListAnswerRows()
	if len(rows) != 0 {
		t.Errorf("orphan answers survived: %v", rows)
	}
}

func TestMemoryStoreUsers(t *testing.T) {
	store := newMemoryStore()
	_ = store.AddUser(&services.User{ID: "u1", Email: "Admin@Example.com"})

	u, err := store.FindUserByEmail("admin@example.com")
	if err != nil || u == nil || u.ID != "u1" {
		t.Fatalf("lookup is not case insensitive: %v, %v", u, err)
	}
	missing, err := store.FindUserByEmail("nobody@example.com")
	if err != nil || missing != nil {
		t.Errorf("missing user: %v, %v", missing, err)
	}
}
