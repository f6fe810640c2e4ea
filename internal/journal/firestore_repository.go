package journal

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pulse/achievement-service/internal/badge"
)

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository instantiates a Firestore-backed repository.
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

const entriesCollection = "journal_entries"

func (r *firestoreRepository) userCollection(userID string) *firestore.CollectionRef {
	return r.client.Collection("users").Doc(userID).Collection(entriesCollection)
}

func (r *firestoreRepository) profile(userID string) *firestore.DocumentRef {
	return r.client.Collection("profiles").Doc(userID)
}

// entryDoc is the stored shape of a journal entry. Nullable fields stay pointers so a
// missing timestamp or score round-trips as absent.
type entryDoc struct {
	CreatedAt     *time.Time `firestore:"created_at"`
	Text          string     `firestore:"text"`
	WordCount     int        `firestore:"word_count"`
	PrimaryMood   string     `firestore:"primary_mood"`
	MoodScore     *float64   `firestore:"mood_score"`
	IsVoiceEntry  bool       `firestore:"is_voice_entry"`
	HasReflection bool       `firestore:"has_reflection"`
}

func toEntryDoc(e badge.Entry) entryDoc {
	doc := entryDoc{
		Text:          e.Text,
		WordCount:     e.WordCount,
		PrimaryMood:   string(e.PrimaryMood),
		MoodScore:     e.MoodScore,
		IsVoiceEntry:  e.IsVoiceEntry,
		HasReflection: e.HasReflection,
	}
	if !e.CreatedAt.IsZero() {
		t := e.CreatedAt.UTC()
		doc.CreatedAt = &t
	}
	return doc
}

func (d entryDoc) toEntry(id string) badge.Entry {
	e := badge.Entry{
		ID:            id,
		Text:          d.Text,
		WordCount:     d.WordCount,
		PrimaryMood:   badge.Mood(d.PrimaryMood),
		MoodScore:     d.MoodScore,
		IsVoiceEntry:  d.IsVoiceEntry,
		HasReflection: d.HasReflection,
	}
	if d.CreatedAt != nil {
		e.CreatedAt = *d.CreatedAt
	}
	return e
}

func (r *firestoreRepository) ListEntries(ctx context.Context, userID string) ([]badge.Entry, error) {
	iter := r.userCollection(userID).Documents(ctx)
	defer iter.Stop()

	var entries []badge.Entry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeError("list journal entries", err)
		}

		var stored entryDoc
		if err := doc.DataTo(&stored); err != nil {
			return nil, fmt.Errorf("decode journal entry %s: %w", doc.Ref.ID, err)
		}
		entries = append(entries, stored.toEntry(doc.Ref.ID))
	}
	return entries, nil
}

func (r *firestoreRepository) CreateEntry(ctx context.Context, userID string, entry badge.Entry) error {
	if err := validateEntry(userID, entry); err != nil {
		return err
	}

	_, err := r.userCollection(userID).Doc(entry.ID).Create(ctx, toEntryDoc(entry))
	return storeError("create journal entry", err)
}

func (r *firestoreRepository) GetCounters(ctx context.Context, userID string) (badge.Counters, error) {
	counters := badge.Counters{}

	doc, err := r.profile(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return counters, nil
	}
	if err != nil {
		return nil, storeError("get counters", err)
	}

	data := doc.Data()
	for counter, field := range counterFields {
		switch v := data[field].(type) {
		case int64:
			counters[counter] = int(v)
		case float64:
			counters[counter] = int(v)
		}
	}
	return counters, nil
}

func (r *firestoreRepository) IncrementCounter(ctx context.Context, userID string, counter badge.Counter, delta int) error {
	if err := validateCounter(userID, counter, delta); err != nil {
		return err
	}

	data := map[string]any{
		"user_id":    userID,
		"updated_at": time.Now().UTC(),
	}
	data[counterFields[counter]] = firestore.Increment(int64(delta))

	_, err := r.profile(userID).Set(ctx, data, firestore.MergeAll)
	return storeError("increment counter", err)
}

// storeError names the failed operation and maps AlreadyExists to ErrConflict.
func storeError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case status.Code(err) == codes.AlreadyExists:
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}
