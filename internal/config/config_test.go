package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	var cfg Config
	cfg.Storage.Type = StorageMemory
	cfg.Github.Token = "token"
	cfg.SetDefaults()
	return cfg
}

func TestSetDefaults(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address)
	assert.Equal(t, "/api/github/webhook", cfg.Server.WebhookEndpoint)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.Equal(t, "onecommit", cfg.Storage.Database)
	assert.Equal(t, ClassifierNone, cfg.Classifier.Type)
	assert.Equal(t, time.Minute, cfg.Watcher.Interval)
	assert.Equal(t, 20, cfg.Pipeline.PoolSize)
	assert.Equal(t, 2*time.Second, cfg.Pipeline.ClassifyDelay)
	assert.Equal(t, 100, cfg.Pipeline.MaxBatchSize)
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	mongo := validConfig()
	mongo.Storage.Type = StorageMongo
	assert.ErrorIs(t, mongo.Validate(), ErrMissingMongoURI)
	mongo.Storage.MongoURI = "mongodb://localhost:27017"
	assert.NoError(t, mongo.Validate())

	badStorage := validConfig()
	badStorage.Storage.Type = "cassandra"
	assert.ErrorIs(t, badStorage.Validate(), ErrInvalidStorageType)

	noToken := validConfig()
	noToken.Github.Token = ""
	assert.ErrorIs(t, noToken.Validate(), ErrMissingGithubToken)

	gemini := validConfig()
	gemini.Classifier.Type = ClassifierGemini
	assert.ErrorIs(t, gemini.Validate(), ErrMissingClassifierKey)
	gemini.Classifier.APIKey = "key"
	assert.NoError(t, gemini.Validate())

	badClassifier := validConfig()
	badClassifier.Classifier.Type = "llama"
	assert.ErrorIs(t, badClassifier.Validate(), ErrInvalidClassifierType)
}
