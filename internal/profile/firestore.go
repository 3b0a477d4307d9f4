package profile

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jonathan/introbird/internal/types"
)

// DefaultCollection is the Firestore collection holding one document per user.
const DefaultCollection = "userProfiles"

// FirestoreStore stores profiles as Firestore documents keyed by user id.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreStore creates a store over an existing Firestore client.
func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	if collection == "" {
		collection = DefaultCollection
	}
	return &FirestoreStore{client: client, collection: collection}
}

// GetProfile reads the user's document.
func (s *FirestoreStore) GetProfile(ctx context.Context, userID string) (*types.Profile, error) {
	snap, err := s.client.Collection(s.collection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, types.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile document: %w", err)
	}

	var p types.Profile
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("failed to decode profile document: %w", err)
	}
	return &p, nil
}

// SaveProfile merges the non-nil fields of update into the user's document.
func (s *FirestoreStore) SaveProfile(ctx context.Context, userID string, update *types.Profile) (*types.Profile, error) {
	doc := s.client.Collection(s.collection).Doc(userID)

	if _, err := doc.Set(ctx, updateFields(update), firestore.MergeAll); err != nil {
		return nil, fmt.Errorf("failed to save profile document: %w", err)
	}
	return s.GetProfile(ctx, userID)
}

// Close closes the underlying client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

// updateFields maps the set fields of a profile to Firestore field names.
func updateFields(update *types.Profile) map[string]interface{} {
	fields := map[string]interface{}{
		"updatedAt": firestore.ServerTimestamp,
	}
	if update == nil {
		return fields
	}
	set := func(name string, v *string) {
		if v != nil {
			fields[name] = *v
		}
	}
	set("firstName", update.FirstName)
	set("lastName", update.LastName)
	set("email", update.Email)
	set("address", update.Address)
	set("bioText", update.BioText)
	set("resumeSummaryText", update.ResumeSummaryText)
	return fields
}
