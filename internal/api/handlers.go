package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"meetscribe/internal/assistant"
	"meetscribe/internal/auth"
	"meetscribe/internal/config"
	"meetscribe/internal/model"
	"meetscribe/internal/store"
	"meetscribe/internal/utils"
	"meetscribe/internal/video"
)

// Server holds the handler dependencies. Everything is injected by the
// composition root; handlers keep no package-level state.
type Server struct {
	store store.Store
	svc   *assistant.Service
	video *video.Client
	cfg   *config.Config
}

// NewServer creates a Server.
func NewServer(st store.Store, svc *assistant.Service, videoClient *video.Client, cfg *config.Config) *Server {
	return &Server{
		store: st,
		svc:   svc,
		video: videoClient,
		cfg:   cfg,
	}
}

// RegisterRoutes wires all routes onto the engine.
func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.healthCheck)

	api := r.Group("/api")
	{
		api.GET("/config", s.clientConfig)

		api.POST("/recordings/create", s.createRecording)
		api.GET("/recordings/:recordingId/check", s.checkRecording)

		api.POST("/summarize", s.summarize)
		api.GET("/summary/:recordingId", s.getSummary)

		api.GET("/faq", s.listFAQs)
		api.POST("/faq", s.createFAQ)
		api.PUT("/faq", s.updateFAQ)
		api.DELETE("/faq", s.deleteFAQ)

		authed := api.Group("", auth.Required(s.cfg.AuthSecret))
		{
			authed.POST("/chat", s.chat)
			authed.GET("/chat/:recordingId", s.chatHistory)
			authed.POST("/meeting/track-participant", s.trackParticipant)
			authed.POST("/meetings", s.createMeeting)
			authed.GET("/meetings", s.listMeetings)
		}
	}
}

// healthCheck returns server health status
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "meetscribe-backend",
	})
}

// clientConfig exposes the feature flags the web client reads at boot.
func (s *Server) clientConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"skipEndCallConfirmation": s.cfg.SkipEndCallConfirmation,
	})
}

type createRecordingRequest struct {
	UniqueID           string `json:"uniqueId"`
	SessionID          string `json:"sessionId"`
	RecordingFilename  string `json:"recordingFilename"`
	RecordingURL       string `json:"recordingUrl"`
	TranscriptFilename string `json:"transcriptFilename"`
	TranscriptURL      string `json:"transcriptUrl"`
}

// createRecording persists recording metadata the first time a user opens
// the chat or summary view. Creation is idempotent per uniqueId.
func (s *Server) createRecording(c *gin.Context) {
	var req createRecordingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	var missing []string
	for field, value := range map[string]string{
		"uniqueId":          req.UniqueID,
		"sessionId":         req.SessionID,
		"recordingFilename": req.RecordingFilename,
		"recordingUrl":      req.RecordingURL,
	} {
		if value == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		utils.Error(c, http.StatusBadRequest, "Missing required fields: "+strings.Join(missing, ", "))
		return
	}

	if req.TranscriptFilename == "" {
		req.TranscriptFilename = "transcript_" + req.RecordingFilename
	}

	rec, created, err := s.store.CreateRecording(c.Request.Context(), &model.RecordingMetadata{
		UniqueID:           req.UniqueID,
		SessionID:          req.SessionID,
		RecordingFilename:  req.RecordingFilename,
		RecordingURL:       req.RecordingURL,
		TranscriptFilename: req.TranscriptFilename,
		TranscriptURL:      req.TranscriptURL,
	})
	if err != nil {
		log.Error().Err(err).Str("uniqueId", req.UniqueID).Msg("failed to create recording")
		utils.Error(c, http.StatusInternalServerError, "Failed to create recording")
		return
	}

	message := "Recording created successfully"
	if !created {
		message = "Recording already exists"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"recording": gin.H{
			"uniqueId":          rec.UniqueID,
			"recordingFilename": rec.RecordingFilename,
		},
	})
}

// checkRecording reports whether metadata exists for a recording.
func (s *Server) checkRecording(c *gin.Context) {
	recordingID := c.Param("recordingId")

	rec, err := s.store.GetRecording(c.Request.Context(), recordingID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"exists":  false,
			"message": "Recording not found",
		})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("recordingId", recordingID).Msg("failed to check recording")
		utils.Error(c, http.StatusInternalServerError, "Failed to check recording")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"exists": true,
		"metadata": gin.H{
			"uniqueId":          rec.UniqueID,
			"recordingFilename": rec.RecordingFilename,
			"hasTranscript":     rec.TranscriptURL != "",
		},
	})
}

type summarizeRequest struct {
	Transcript string `json:"transcript"`
	UniqueID   string `json:"uniqueId"`
	SessionID  string `json:"sessionId"`
	Filename   string `json:"filename"`
}

// summarize generates (or returns the cached) summary for a recording.
func (s *Server) summarize(c *gin.Context) {
	var req summarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Transcript == "" || req.UniqueID == "" {
		utils.Error(c, http.StatusBadRequest, "Transcript and uniqueId are required")
		return
	}

	summary, err := s.svc.Summarize(c.Request.Context(), req.UniqueID, req.SessionID, req.Filename, req.Transcript)
	if errors.Is(err, assistant.ErrRecordingNotFound) {
		utils.Error(c, http.StatusNotFound, "Recording not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("recordingId", req.UniqueID).Msg("failed to generate summary")
		utils.Error(c, http.StatusInternalServerError, "Failed to generate summary")
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// getSummary returns a previously generated summary.
func (s *Server) getSummary(c *gin.Context) {
	recordingID := c.Param("recordingId")

	sum, err := s.store.GetSummary(c.Request.Context(), recordingID)
	if errors.Is(err, store.ErrNotFound) {
		utils.Error(c, http.StatusNotFound, "Summary not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("recordingId", recordingID).Msg("failed to get summary")
		utils.Error(c, http.StatusInternalServerError, "Failed to retrieve summary")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recordingId": sum.RecordingID,
		"content":     sum.Content,
		"createdAt":   sum.CreatedAt,
	})
}

type chatRequest struct {
	Message          string          `json:"message"`
	UniqueID         string          `json:"uniqueId"`
	PreviousMessages []model.Message `json:"previousMessages"`
}

// chat runs one conversation turn for the authenticated user.
func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" || req.UniqueID == "" {
		utils.Error(c, http.StatusBadRequest, "Message and uniqueId are required")
		return
	}

	userID := auth.UserID(c)
	reply, err := s.svc.Chat(c.Request.Context(), userID, req.UniqueID, req.Message, req.PreviousMessages)
	if errors.Is(err, assistant.ErrRecordingNotFound) {
		utils.Error(c, http.StatusNotFound, "Recording not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("recordingId", req.UniqueID).Str("userId", userID).Msg("chat turn failed")
		utils.Error(c, http.StatusInternalServerError, "Failed to generate response")
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

// chatHistory returns the authenticated user's conversation about a
// recording, plus the recording metadata the chat page renders.
func (s *Server) chatHistory(c *gin.Context) {
	recordingID := c.Param("recordingId")
	userID := auth.UserID(c)

	rec, messages, err := s.svc.History(c.Request.Context(), userID, recordingID)
	if errors.Is(err, assistant.ErrRecordingNotFound) {
		utils.Error(c, http.StatusNotFound, "Recording not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("recordingId", recordingID).Msg("failed to load chat history")
		utils.Error(c, http.StatusInternalServerError, "Failed to retrieve chat history")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recordingId": recordingID,
		"userId":      userID,
		"messages":    messages,
		"recordingMetadata": gin.H{
			"recordingFilename":  rec.RecordingFilename,
			"recordingUrl":       rec.RecordingURL,
			"transcriptFilename": rec.TranscriptFilename,
			"transcriptUrl":      rec.TranscriptURL,
		},
	})
}

type trackParticipantRequest struct {
	CallID      string            `json:"call_id"`
	CallType    string            `json:"call_type"`
	Participant video.Participant `json:"participant"`
	Action      string            `json:"action"`
}

// trackParticipant records join/leave/end events in the call's custom data
// on the video provider.
func (s *Server) trackParticipant(c *gin.Context) {
	if !s.video.Configured() {
		utils.Error(c, http.StatusInternalServerError, "Video provider credentials not configured")
		return
	}

	var req trackParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CallID == "" || req.CallType == "" || req.Participant.UserID == "" || req.Action == "" {
		utils.Error(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	ctx := c.Request.Context()
	call, err := s.video.GetCall(ctx, req.CallType, req.CallID)
	if err != nil {
		log.Error().Err(err).Str("callId", req.CallID).Msg("failed to get call")
		utils.Error(c, http.StatusInternalServerError, "Failed to track participant")
		return
	}

	custom, err := video.ApplyParticipantAction(call.Custom, req.Participant, req.Action, time.Now())
	if err != nil {
		utils.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.video.UpdateCallCustom(ctx, req.CallType, req.CallID, custom); err != nil {
		log.Error().Err(err).Str("callId", req.CallID).Msg("failed to update call")
		utils.Error(c, http.StatusInternalServerError, "Failed to track participant")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type createMeetingRequest struct {
	Description string     `json:"description"`
	StartsAt    *time.Time `json:"startsAt"`
}

// createMeeting registers a new call with the video provider under a fresh
// id and returns the link the client shares with participants.
func (s *Server) createMeeting(c *gin.Context) {
	if !s.video.Configured() {
		utils.Error(c, http.StatusInternalServerError, "Video provider credentials not configured")
		return
	}

	var req createMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID := auth.UserID(c)
	callID := uuid.NewString()

	var custom map[string]interface{}
	if req.Description != "" {
		custom = map[string]interface{}{"description": req.Description}
	}

	call, err := s.video.CreateCall(c.Request.Context(), "default", callID, userID, req.StartsAt, custom)
	if err != nil {
		log.Error().Err(err).Str("callId", callID).Msg("failed to create call")
		utils.Error(c, http.StatusInternalServerError, "Failed to create meeting")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"call":    call,
		"joinUrl": s.cfg.PublicBaseURL + "/meeting/" + call.ID,
	})
}

// listMeetings proxies the provider's call listing for the authenticated
// user, restricted to calls with recordings.
func (s *Server) listMeetings(c *gin.Context) {
	if !s.video.Configured() {
		utils.Error(c, http.StatusInternalServerError, "Video provider credentials not configured")
		return
	}

	userID := auth.UserID(c)
	calls, err := s.video.CallsWithArtifacts(c.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("userId", userID).Msg("failed to list meetings")
		utils.Error(c, http.StatusInternalServerError, "Failed to load meetings")
		return
	}

	now := time.Now()
	meetings := make([]gin.H, 0, len(calls))
	for _, entry := range calls {
		meetings = append(meetings, gin.H{
			"call":           entry.Call,
			"recordings":     entry.Recordings,
			"transcriptions": entry.Transcriptions,
			"ended":          video.Ended(entry.Call.StartsAt, entry.Call.EndedAt, now),
		})
	}

	c.JSON(http.StatusOK, gin.H{"meetings": meetings})
}
