package utils

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var loadEnvOnce sync.Once

// loadTestEnv loads the project root .env so integration tests pick up MONGO_URI.
func loadTestEnv() {
	loadEnvOnce.Do(func() {
		_, filename, _, _ := runtime.Caller(0)
		projectRoot := filepath.Join(filepath.Dir(filename), "..", "..")
		if err := godotenv.Load(filepath.Join(projectRoot, ".env")); err != nil {
			_ = godotenv.Load()
		}
	})
}

// GetTestMongoURI returns MONGO_URI, or "" when no test database is configured.
func GetTestMongoURI() string {
	loadTestEnv()
	return os.Getenv("MONGO_URI")
}

// SetupTestDB connects to the test MongoDB and drops the named collections.
// The test is skipped when MONGO_URI is not set. The client is closed on cleanup.
func SetupTestDB(t *testing.T, dbName string, collections ...string) *mongo.Database {
	t.Helper()
	uri := GetTestMongoURI()
	if uri == "" {
		t.Skip("MONGO_URI not set, skipping MongoDB test")
	}

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	require.NoError(t, err, "Failed to connect to MongoDB")
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	db := client.Database(dbName)
	for _, collection := range collections {
		_ = db.Collection(collection).Drop(context.Background())
	}
	return db
}
