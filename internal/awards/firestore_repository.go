package awards

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository instantiates a Firestore-backed repository.
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

func (r *firestoreRepository) collection(userID string) *firestore.CollectionRef {
	return r.client.Collection("profiles").Doc(userID).Collection("badge_awards")
}

type awardDoc struct {
	BadgeID     string    `firestore:"badge_id"`
	Tier        string    `firestore:"tier"`
	EarnedAt    time.Time `firestore:"earned_at"`
	Approximate bool      `firestore:"approximate"`
}

func (r *firestoreRepository) ListAwards(ctx context.Context, userID string) (map[string]Award, error) {
	iter := r.collection(userID).Documents(ctx)
	defer iter.Stop()

	out := make(map[string]Award)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list awards: %w", err)
		}

		var stored awardDoc
		if err := doc.DataTo(&stored); err != nil {
			return nil, fmt.Errorf("decode award %s: %w", doc.Ref.ID, err)
		}
		out[doc.Ref.ID] = Award{
			UserID:      userID,
			BadgeID:     doc.Ref.ID,
			Tier:        stored.Tier,
			EarnedAt:    stored.EarnedAt,
			Approximate: stored.Approximate,
		}
	}
	return out, nil
}

func (r *firestoreRepository) RecordAwards(ctx context.Context, userID string, awards []Award) ([]Award, error) {
	if err := validateAll(userID, awards); err != nil {
		return nil, err
	}
	awards = unique(awards)
	if len(awards) == 0 {
		return nil, nil
	}

	var created []Award
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		// The closure may run more than once.
		created = created[:0]

		refs := make([]*firestore.DocumentRef, len(awards))
		for i, a := range awards {
			refs[i] = r.collection(userID).Doc(a.BadgeID)
		}
		snaps, err := tx.GetAll(refs)
		if err != nil {
			return fmt.Errorf("load awards: %w", err)
		}

		for i, a := range awards {
			if snaps[i].Exists() {
				continue
			}
			a.UserID = userID
			a.EarnedAt = a.EarnedAt.UTC()
			err := tx.Create(refs[i], awardDoc{
				BadgeID:     a.BadgeID,
				Tier:        a.Tier,
				EarnedAt:    a.EarnedAt,
				Approximate: a.Approximate,
			})
			if err != nil {
				return err
			}
			created = append(created, a)
		}
		return nil
	})
	if err != nil {
		return nil, recordError(err)
	}
	return created, nil
}

// recordError reports a lost Create race as ErrWriteConflict. The transaction rolled back
// the whole batch, so the caller retries and the next read skips the winner's badge.
func recordError(err error) error {
	if status.Code(err) == codes.AlreadyExists {
		return fmt.Errorf("record awards: %w: %v", ErrWriteConflict, err)
	}
	return fmt.Errorf("record awards: %w", err)
}
