package docstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreConfig locates the Firestore project and collection.
type FirestoreConfig struct {
	ProjectID       string
	CredentialsFile string
	Collection      string
}

// FirestoreMirror writes allotment documents into one Firestore collection.
type FirestoreMirror struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreMirror connects through the Firebase Admin SDK. Without a
// credentials file, application default credentials are used.
func NewFirestoreMirror(ctx context.Context, cfg FirestoreConfig) (*FirestoreMirror, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("firestore project id required")
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firestore client: %w", err)
	}
	collection := cfg.Collection
	if collection == "" {
		collection = "allotments"
	}
	return &FirestoreMirror{client: client, collection: collection}, nil
}

// PutAllotment replaces the document stored for doc.AllotmentID.
func (m *FirestoreMirror) PutAllotment(ctx context.Context, doc AllotmentDocument) error {
	if _, err := m.client.Collection(m.collection).Doc(doc.AllotmentID).Set(ctx, doc); err != nil {
		return fmt.Errorf("put allotment %s: %w", doc.AllotmentID, err)
	}
	return nil
}

// DeleteAllotment removes a mirrored allotment; missing documents are ignored.
func (m *FirestoreMirror) DeleteAllotment(ctx context.Context, allotmentID string) error {
	if _, err := m.client.Collection(m.collection).Doc(allotmentID).Delete(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil
		}
		return fmt.Errorf("delete allotment %s: %w", allotmentID, err)
	}
	return nil
}

// Close releases the Firestore client.
func (m *FirestoreMirror) Close() error {
	return m.client.Close()
}
