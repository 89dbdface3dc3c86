package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rawanfarouq/EduRA-sub001/internal/jobs"
	"github.com/rawanfarouq/EduRA-sub001/internal/matching"
	"github.com/rawanfarouq/EduRA-sub001/internal/models"
	"github.com/rawanfarouq/EduRA-sub001/internal/storage"
)

type matchRequest struct {
	Text string `json:"text" validate:"required"`
	// BudgetSeconds bounds the run; zero uses the configured budget.
	BudgetSeconds float64 `json:"budget_seconds" validate:"gte=0"`
}

type courseRequest struct {
	ID           string `json:"id" validate:"omitempty,max=128"`
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description"`
	CategoryName string `json:"category_name"`
	Notify       *bool  `json:"notify"`
}

type actionRequest struct {
	Status models.ActionStatus `json:"status" validate:"required,oneof=applied accepted rejected dismissed"`
}

type courseResponse struct {
	Course models.TargetItem `json:"course"`
	JobID  string            `json:"job_id,omitempty"`
	Job    *jobs.Job         `json:"job,omitempty"`
}

func (s *Server) handleMatchCV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)

	var (
		result *matching.PullResult
		err    error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		doc, ok := s.readUpload(w, r)
		if !ok {
			return
		}
		s.logger.Debug("match cv upload", zap.String("filename", doc.Filename), zap.Int("bytes", len(doc.Content)))
		result, err = s.engine.RankTargetsForCandidateDocument(r.Context(), doc)
	} else {
		var req matchRequest
		if !s.decode(w, r, &req) {
			return
		}
		var opts []matching.RunOption
		if req.BudgetSeconds > 0 {
			opts = append(opts, matching.WithBudget(time.Duration(req.BudgetSeconds*float64(time.Second))))
		}
		result, err = s.engine.RankTargetsForCandidateText(r.Context(), req.Text, opts...)
	}
	if err != nil {
		s.respondEngineError(w, "match cv", err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (models.Document, bool) {
	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart body: "+err.Error())
		return models.Document{}, false
	}
	file, header, err := r.FormFile("cv")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, `multipart field "cv" is required`)
		return models.Document{}, false
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read upload")
		return models.Document{}, false
	}
	return models.Document{
		Content:   content,
		Filename:  header.Filename,
		MediaType: header.Header.Get("Content-Type"),
	}, true
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var req courseRequest
	if !s.decode(w, r, &req) {
		return
	}
	target := models.TargetItem{
		ID:           strings.TrimSpace(req.ID),
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		CategoryName: strings.TrimSpace(req.CategoryName),
	}
	if target.ID == "" {
		target.ID = uuid.NewString()
	}
	if err := s.store.UpsertTarget(r.Context(), &target); err != nil {
		s.logger.Error("store course failed", zap.String("course_id", target.ID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Debug("course stored", zap.String("course_id", target.ID))

	resp := courseResponse{Course: target}
	if req.Notify != nil && !*req.Notify {
		s.respondJSON(w, http.StatusCreated, resp)
		return
	}
	s.startPush(w, r, target, resp)
}

func (s *Server) handleNotifyCourse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	target, err := s.store.GetTarget(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "course not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.startPush(w, r, *target, courseResponse{Course: *target})
}

// startPush submits the push job and answers 202, or 200 with the finished job when the
// request asks to wait.
func (s *Server) startPush(w http.ResponseWriter, r *http.Request, target models.TargetItem, resp courseResponse) {
	var opts []matching.RunOption
	if queryBool(r, "dry_run") {
		opts = append(opts, matching.DryRun())
	}
	jobID, err := s.SubmitPush(target, opts...)
	if err != nil {
		s.logger.Error("submit push failed", zap.String("course_id", target.ID), zap.Error(err))
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	resp.JobID = jobID
	if !queryBool(r, "wait") {
		s.respondJSON(w, http.StatusAccepted, resp)
		return
	}
	job, err := s.jobs.Wait(r.Context(), jobID)
	if err != nil {
		s.respondJSON(w, http.StatusAccepted, resp)
		return
	}
	resp.Job = &job
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobs.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusNotFound, "job not found")
		return
	}
	s.respondJSON(w, http.StatusOK, job)
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := storage.NotificationFilter{
		RecipientID: q.Get("recipient_id"),
		TargetID:    q.Get("course_id"),
		Status:      models.ActionStatus(q.Get("status")),
		UnreadOnly:  queryBool(r, "unread"),
	}
	if f.RecipientID == "" {
		s.respondError(w, http.StatusBadRequest, "recipient_id is required")
		return
	}
	if f.Status != "" && !f.Status.Valid() {
		s.respondError(w, http.StatusBadRequest, "unknown status")
		return
	}
	var err error
	if f.Limit, err = queryInt(r, "limit", 50); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if f.Offset, err = queryInt(r, "offset", 0); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid offset")
		return
	}
	list, err := s.store.ListNotifications(r.Context(), f)
	if err != nil {
		s.logger.Error("list notifications failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"notifications": list, "count": len(list)})
}

func (s *Server) handleNotificationAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if !s.decode(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	rec, err := s.store.UpdateActionStatus(r.Context(), id, req.Status)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "notification not found")
	case errors.Is(err, models.ErrInvalidTransition):
		s.respondError(w, http.StatusConflict, err.Error())
	case err != nil:
		s.logger.Error("update action status failed", zap.String("notification_id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	default:
		s.respondJSON(w, http.StatusOK, rec)
	}
}

func (s *Server) handleNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "notification not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "read"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.logger.Error("status: stats failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"storage": stats,
		"jobs":    s.jobs.Counts(),
	}
	if s.matching != nil {
		resp["matching"] = map[string]interface{}{
			"push":    s.matching.Push,
			"pull":    s.matching.Pull,
			"boosts":  s.matching.Boosts,
			"workers": s.matching.Workers,
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// decode reads a JSON body into dst and validates it, answering 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (s *Server) respondEngineError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, matching.ErrCandidateUnreadable):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, matching.ErrEmbedding):
		status = http.StatusBadGateway
	case errors.Is(err, matching.ErrRepository):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Error(op+" failed", zap.Error(err))
	} else {
		s.logger.Warn(op+" failed", zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

func queryBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
