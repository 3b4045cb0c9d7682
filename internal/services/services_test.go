package services

import (
	cryptorand "crypto/rand"
	"crypto/rsa"
	"path/filepath"
	"testing"

	"github.com/brunogcp/SafeGuard/internal/crypto"
	"github.com/brunogcp/SafeGuard/internal/db"
	"github.com/brunogcp/SafeGuard/internal/db/models"
	"github.com/brunogcp/SafeGuard/internal/storage"
	"github.com/brunogcp/SafeGuard/pkg/metrics"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testEnv wires the services against a throwaway sqlite database and a
// temporary blob directory so the signing transaction runs against real SQL.
type testEnv struct {
	db       *gorm.DB
	material *crypto.Material
	store    *storage.FileStore
	docs     *DocumentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(database))

	priv, err := rsa.GenerateKey(cryptorand.Reader, 2048)
	require.NoError(t, err)
	box, err := crypto.NewBox("test-encryption-secret")
	require.NoError(t, err)
	material := &crypto.Material{Box: box, Signer: crypto.NewSigner(priv)}

	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	env := &testEnv{
		db:       database,
		material: material,
		store:    store,
	}
	env.docs = NewDocumentService(database, material, store, zap.NewNop(), metrics.NewMetricsCollector())
	return env
}

func (e *testEnv) createUser(t *testing.T, email string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{Email: email, PasswordHash: string(hash)}
	require.NoError(t, e.db.Create(user).Error)
	return user
}
