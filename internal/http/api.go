package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"quiz-service/internal/converter"
	"quiz-service/internal/domain"
	"quiz-service/internal/repository"
	"quiz-service/internal/service"
	"quiz-service/internal/storage"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users     service.UserService
	quiz      service.QuizService
	files     *converter.FileStore
	storage   storage.Service
	bucket    string
	keyPrefix string
	jwtSecret []byte
	logger    *logrus.Logger
}

func NewHandler(
	users service.UserService,
	quiz service.QuizService,
	files *converter.FileStore,
	store storage.Service,
	bucket, keyPrefix string,
	jwtSecret string,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		users:     users,
		quiz:      quiz,
		files:     files,
		storage:   store,
		bucket:    bucket,
		keyPrefix: keyPrefix,
		jwtSecret: []byte(jwtSecret),
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/", h.register)
		authGroup.POST("/token", h.login)
	}

	router.GET("/", h.authMiddleware(), h.currentUser)

	router.GET("/question/:id", h.getQuestion)
	router.GET("/choices/:id", h.getChoices)
	router.GET("/questions", h.listQuestions)
	router.POST("/questions", h.authMiddleware(), h.createQuestion)
	router.DELETE("/question/:id", h.authMiddleware(), h.deleteQuestion)

	fileGroup := router.Group("/file")
	{
		fileGroup.POST("/upload", h.uploadFile)
		fileGroup.POST("/convert", h.convertFile)
		fileGroup.POST("/convert/stream", h.convertFileStream)
		fileGroup.GET("/converted", h.authMiddleware(), h.listConverted)
		fileGroup.GET("/converted/url", h.authMiddleware(), h.convertedURL)
	}

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type createQuestionRequest struct {
	Question string `json:"question" binding:"required"`
	Choices  []struct {
		Choice    string `json:"choice" binding:"required"`
		IsCorrect bool   `json:"is_correct"`
	} `json:"choices"`
}

type QuestionResponse struct {
	ID        int64            `json:"id"`
	Question  string           `json:"question"`
	CreatedAt string           `json:"created_at"`
	Choices   []ChoiceResponse `json:"choices"`
}

type ChoiceResponse struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	Choice     string `json:"choice"`
	IsCorrect  bool   `json:"is_correct"`
}

func (h *Handler) createQuestion(c *gin.Context) {
	var req createQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	choices := make([]domain.Choice, len(req.Choices))
	for i, ch := range req.Choices {
		choices[i] = domain.Choice{Text: ch.Choice, IsCorrect: ch.IsCorrect}
	}

	question, err := h.quiz.CreateQuestion(c.Request.Context(), req.Question, choices)
	if err != nil {
		h.logger.WithError(err).Error("create question")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create question"})
		return
	}

	c.JSON(http.StatusCreated, questionToResponse(*question))
}

func (h *Handler) getQuestion(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	question, err := h.quiz.GetQuestion(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "question not found"})
			return
		}
		h.logger.WithError(err).Error("get question")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get question"})
		return
	}

	c.JSON(http.StatusOK, questionToResponse(*question))
}

func (h *Handler) getChoices(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	choices, err := h.quiz.ListChoices(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "choices not found"})
			return
		}
		h.logger.WithError(err).Error("list choices")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list choices"})
		return
	}

	resp := make([]ChoiceResponse, len(choices))
	for i := range choices {
		resp[i] = choiceToResponse(choices[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) listQuestions(c *gin.Context) {
	questions, err := h.quiz.ListQuestions(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("list questions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list questions"})
		return
	}

	resp := make([]QuestionResponse, len(questions))
	for i := range questions {
		resp[i] = questionToResponse(questions[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) deleteQuestion(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.quiz.DeleteQuestion(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "question not found"})
			return
		}
		h.logger.WithError(err).Error("delete question")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete question"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) uploadFile(c *gin.Context) {
	data, header, ok := h.readJSONUpload(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"filename": header.Filename,
		"content":  string(data),
	})
}

func (h *Handler) convertFile(c *gin.Context) {
	data, header, ok := h.readJSONUpload(c)
	if !ok {
		return
	}

	converted, err := converter.Convert(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON file"})
		return
	}

	name := converter.OutputName(header.Filename)
	path, err := h.files.Save(name, converted)
	if err != nil {
		h.logger.WithError(err).Error("save converted file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save converted file"})
		return
	}

	h.archiveConverted(c, name, converted)

	c.FileAttachment(path, name)
}

func (h *Handler) convertFileStream(c *gin.Context) {
	data, header, ok := h.readJSONUpload(c)
	if !ok {
		return
	}

	converted, err := converter.Convert(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON file"})
		return
	}

	name := converter.OutputName(header.Filename)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", name))
	c.Data(http.StatusOK, "application/octet-stream", converted)
}

func (h *Handler) listConverted(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage service not configured"})
		return
	}

	objects, err := h.storage.ListObjects(c.Request.Context(), h.bucket, h.keyPrefix)
	if err != nil {
		h.logger.WithError(err).Error("list archived objects")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list archived files"})
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) convertedURL(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage service not configured"})
		return
	}

	key := strings.TrimSpace(c.Query("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	location, err := h.storage.GetObjectURL(c.Request.Context(), h.bucket, key, 15*time.Minute)
	if err != nil {
		h.logger.WithError(err).Error("presign archived object")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to presign archived file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": location})
}

// archiveConverted best-effort uploads the converted document to object storage
// when a bucket is configured. Failures are logged and never fail the request.
func (h *Handler) archiveConverted(c *gin.Context, name string, content []byte) {
	if h.storage == nil || h.bucket == "" {
		return
	}

	uploadCtx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	location, err := h.storage.UploadFile(uploadCtx, name, bytes.NewReader(content), storage.UploadOptions{
		Bucket:      h.bucket,
		KeyPrefix:   h.keyPrefix,
		ContentType: "application/yaml",
	})
	if err != nil {
		h.logger.WithError(err).Warnf("archive converted file %s", name)
		return
	}
	h.logger.Infof("archived converted file to %s", location)
}

func (h *Handler) readJSONUpload(c *gin.Context) ([]byte, *multipart.FileHeader, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return nil, nil, false
	}

	contentType := header.Header.Get("Content-Type")
	if !isJSONContentType(contentType) && !strings.HasSuffix(strings.ToLower(header.Filename), ".json") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type"})
		return nil, nil, false
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded file"})
		return nil, nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		return nil, nil, false
	}

	return data, header, true
}

func isJSONContentType(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	return contentType == "application/json"
}

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}

func questionToResponse(question domain.Question) QuestionResponse {
	resp := QuestionResponse{
		ID:        question.ID,
		Question:  question.Text,
		CreatedAt: question.CreatedAt.Format(time.RFC3339),
		Choices:   make([]ChoiceResponse, len(question.Choices)),
	}
	for i := range question.Choices {
		resp.Choices[i] = choiceToResponse(question.Choices[i])
	}
	return resp
}

func choiceToResponse(choice domain.Choice) ChoiceResponse {
	return ChoiceResponse{
		ID:         choice.ID,
		QuestionID: choice.QuestionID,
		Choice:     choice.Text,
		IsCorrect:  choice.IsCorrect,
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
