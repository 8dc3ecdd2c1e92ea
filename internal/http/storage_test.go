package http_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-service/internal/converter"
	apphttp "quiz-service/internal/http"
	"quiz-service/internal/repository/sqlite"
	"quiz-service/internal/service"
	"quiz-service/internal/storage"
)

// fakeStorage records uploads and serves canned listings.
type fakeStorage struct {
	uploaded []string
	objects  []storage.ObjectInfo
}

func (f *fakeStorage) UploadFile(_ context.Context, name string, body io.Reader, opts storage.UploadOptions) (string, error) {
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	f.uploaded = append(f.uploaded, name)
	return "s3://" + opts.Bucket + "/" + opts.KeyPrefix + "/" + name, nil
}

func (f *fakeStorage) ListObjects(_ context.Context, _, _ string) ([]storage.ObjectInfo, error) {
	return f.objects, nil
}

func (f *fakeStorage) GetObjectURL(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	return "https://" + bucket + ".example.com/" + key, nil
}

func newStorageRouter(t *testing.T, store storage.Service) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	userRepo := sqlite.NewUserRepository(db)
	questionRepo := sqlite.NewQuestionRepository(db)
	choiceRepo := sqlite.NewChoiceRepository(db)
	require.NoError(t, userRepo.Init(ctx))
	require.NoError(t, questionRepo.Init(ctx))
	require.NoError(t, choiceRepo.Init(ctx))

	fileStore, err := converter.NewFileStore(filepath.Join(t.TempDir(), "converted"))
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	handler := apphttp.NewHandler(
		service.NewUserService(userRepo, testSecret, 30*time.Minute),
		service.NewQuizService(questionRepo, choiceRepo),
		fileStore,
		store,
		"archives", "converted",
		testSecret,
		logger,
	)

	router := gin.New()
	handler.RegisterRoutes(router)
	return router
}

func TestConvert_ArchivesToStorage(t *testing.T) {
	store := &fakeStorage{}
	router := newStorageRouter(t, store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartJSONUpload(t, "/file/convert", "data.json", `{"a":1}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Len(t, store.uploaded, 1)
	assert.Contains(t, store.uploaded[0], ".yaml")
}

func TestListConverted(t *testing.T) {
	now := time.Now()
	store := &fakeStorage{objects: []storage.ObjectInfo{
		{Key: "converted/data.yaml", Size: 12, LastModified: &now},
	}}
	router := newStorageRouter(t, store)
	token := authToken(t, router)

	req := httptest.NewRequest(http.MethodGet, "/file/converted", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "converted/data.yaml")
}

func TestConvertedURL(t *testing.T) {
	router := newStorageRouter(t, &fakeStorage{})
	token := authToken(t, router)

	req := httptest.NewRequest(http.MethodGet, "/file/converted/url?key=converted/data.yaml", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "archives.example.com/converted/data.yaml")

	// missing key
	req = httptest.NewRequest(http.MethodGet, "/file/converted/url", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
