package firebase

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/storage"
	"google.golang.org/api/option"
)

// App holds the initialized Firebase app and storage client used as the
// backing store for processed images
type App struct {
	FirebaseApp   *firebase.App
	StorageClient *storage.Client
	Bucket        string
}

// InitFirebase initializes the Firebase application and storage client
func InitFirebase(ctx context.Context, credentialsPath, bucket string) (*App, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("Firebase credentials path not provided")
	}

	// Check if the credentials file exists
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("Firebase credentials file not found at %s", credentialsPath)
	}

	opt := option.WithCredentialsFile(credentialsPath)

	firebaseApp, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: bucket}, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	storageClient, err := firebaseApp.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase storage client: %w", err)
	}

	log.Println("Firebase app and storage client initialized successfully!")
	return &App{FirebaseApp: firebaseApp, StorageClient: storageClient, Bucket: bucket}, nil
}

// UploadFile copies a local file into the storage bucket and returns its
// public URL
func (a *App) UploadFile(ctx context.Context, localPath string) (string, error) {
	bucket, err := a.StorageClient.DefaultBucket()
	if err != nil {
		return "", fmt.Errorf("error getting storage bucket: %w", err)
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", err
	}

	objectName := filepath.ToSlash(localPath)
	writer := bucket.Object(objectName).NewWriter(ctx)
	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return "", fmt.Errorf("error uploading file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("error uploading file: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", a.Bucket, objectName), nil
}
