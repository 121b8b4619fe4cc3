package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"meetscribe/internal/model"
	"meetscribe/internal/store"
	"meetscribe/internal/utils"
)

// listFAQs returns all FAQ records.
func (s *Server) listFAQs(c *gin.Context) {
	faqs, err := s.store.ListFAQs(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list FAQs")
		utils.Error(c, http.StatusInternalServerError, "Failed to retrieve FAQs")
		return
	}
	if faqs == nil {
		faqs = []model.FAQ{}
	}
	c.JSON(http.StatusOK, faqs)
}

type faqRequest struct {
	ID       string `json:"_id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// createFAQ adds a new FAQ record.
func (s *Server) createFAQ(c *gin.Context) {
	var req faqRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Question == "" || req.Answer == "" {
		utils.Error(c, http.StatusBadRequest, "Question and answer are required")
		return
	}

	faq, err := s.store.CreateFAQ(c.Request.Context(), &model.FAQ{
		Question: req.Question,
		Answer:   req.Answer,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create FAQ")
		utils.Error(c, http.StatusBadRequest, "Failed to create FAQ")
		return
	}

	c.JSON(http.StatusCreated, faq)
}

// updateFAQ replaces an FAQ's question and answer by _id.
func (s *Server) updateFAQ(c *gin.Context) {
	var req faqRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := primitive.ObjectIDFromHex(req.ID)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "Invalid FAQ id")
		return
	}

	faq, err := s.store.UpdateFAQ(c.Request.Context(), &model.FAQ{
		ID:       id,
		Question: req.Question,
		Answer:   req.Answer,
	})
	if errors.Is(err, store.ErrNotFound) {
		utils.Error(c, http.StatusNotFound, "FAQ not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to update FAQ")
		utils.Error(c, http.StatusBadRequest, "Failed to update FAQ")
		return
	}

	c.JSON(http.StatusOK, faq)
}

// deleteFAQ removes an FAQ by _id.
func (s *Server) deleteFAQ(c *gin.Context) {
	var req faqRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := primitive.ObjectIDFromHex(req.ID)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "Invalid FAQ id")
		return
	}

	if err := s.store.DeleteFAQ(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(c, http.StatusNotFound, "FAQ not found")
			return
		}
		log.Error().Err(err).Msg("failed to delete FAQ")
		utils.Error(c, http.StatusBadRequest, "Failed to delete FAQ")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "FAQ deleted successfully"})
}
