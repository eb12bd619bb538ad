package handler

import (
	"clutch-review/constant"
	"clutch-review/dto"
	"clutch-review/entities"
	"clutch-review/repository"
	"clutch-review/service"
	"errors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"net/http"
)

const userIDHeader = "X-User-ID"

type HTTPHandler struct {
	videos  service.VideoService
	reviews service.ReviewService
	bans    service.BanList
}

func NewHTTPHandler(videos service.VideoService, reviews service.ReviewService, bans service.BanList) *HTTPHandler {
	if bans == nil {
		bans = service.NopBanList{}
	}
	return &HTTPHandler{
		videos:  videos,
		reviews: reviews,
		bans:    bans,
	}
}

// RegisterValidators adds the custom binding tags used by the request dtos.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected gin validator engine")
	}
	return v.RegisterValidation("violation_kind", func(fl validator.FieldLevel) bool {
		switch constant.ViolationKind(fl.Field().String()) {
		case constant.ViolationUpload, constant.ViolationReview:
			return true
		}
		return false
	})
}

func (h *HTTPHandler) Register(r *gin.Engine) {
	api := r.Group("", h.rejectBanned)

	users := api.Group("/users/:userId")
	users.POST("/videos", h.startRecording)
	users.POST("/videos/:videoId/complete", h.completeVideo)
	users.POST("/videos/:videoId/fail", h.failVideo)
	users.GET("/stats", h.stats)
	users.POST("/violations", h.recordViolation)

	reviews := api.Group("/reviews/:country")
	reviews.GET("", h.listPending)
	reviews.GET("/failed", h.listFailed)
	reviews.GET("/candidate", h.findCandidate)
	reviews.POST("/claim-next", h.claimNext)
	reviews.POST("/videos/:videoId/claim", h.claim)
	reviews.POST("/videos/:videoId/release", h.release)
	reviews.POST("/videos/:videoId/success", h.reviewSuccess)
	reviews.POST("/videos/:videoId/failure", h.reviewFailure)
}

func (h *HTTPHandler) rejectBanned(c *gin.Context) {
	userID := c.GetHeader(userIDHeader)
	if userID == "" {
		c.Next()
		return
	}
	banned, err := h.bans.IsBanned(c.Request.Context(), userID)
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("user_id", userID).Msg("ban lookup failed")
		c.Next()
		return
	}
	if banned {
		c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{Error: "account suspended"})
		return
	}
	c.Next()
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAlreadyClaimed), errors.Is(err, service.ErrVideoCompleted):
		return http.StatusConflict
	case errors.Is(err, service.ErrOwnVideo), errors.Is(err, service.ErrInvalidShots):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, dto.ErrorResponse{Error: err.Error()})
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return false
	}
	return true
}

func (h *HTTPHandler) startRecording(c *gin.Context) {
	video, err := h.videos.StartRecording(c.Request.Context(), c.Param("userId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, video)
}

func (h *HTTPHandler) completeVideo(c *gin.Context) {
	var req dto.CompleteVideoRequest
	if !bindJSON(c, &req) {
		return
	}
	video, err := h.videos.CompleteVideo(c.Request.Context(), c.Param("userId"), c.Param("videoId"), *req.Shots, req.URL, req.ObjectKey)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, video)
}

func (h *HTTPHandler) failVideo(c *gin.Context) {
	var req dto.FailVideoRequest
	if !bindJSON(c, &req) {
		return
	}
	video, err := h.videos.FailVideo(c.Request.Context(), c.Param("userId"), c.Param("videoId"), req.Error)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, video)
}

func (h *HTTPHandler) stats(c *gin.Context) {
	stats, err := h.videos.GetStats(c.Request.Context(), c.Param("userId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *HTTPHandler) recordViolation(c *gin.Context) {
	var req dto.ViolationRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.videos.RecordViolation(c.Request.Context(), c.Param("userId"), req.Kind); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) listPending(c *gin.Context) {
	entries, err := h.reviews.ListPending(c.Request.Context(), c.Param("country"))
	if err != nil {
		writeError(c, err)
		return
	}
	if entries == nil {
		entries = []*entities.PendingReview{}
	}
	c.JSON(http.StatusOK, entries)
}

func (h *HTTPHandler) listFailed(c *gin.Context) {
	reviews, err := h.reviews.ListFailedReviews(c.Request.Context(), c.Param("country"))
	if err != nil {
		writeError(c, err)
		return
	}
	if reviews == nil {
		reviews = []*entities.FailedReview{}
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *HTTPHandler) findCandidate(c *gin.Context) {
	reviewerID := c.Query("reviewerId")
	if reviewerID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "reviewerId is required"})
		return
	}
	entry, err := h.reviews.FindCandidate(c.Request.Context(), c.Param("country"), reviewerID)
	if err != nil {
		writeError(c, err)
		return
	}
	if entry == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *HTTPHandler) claimNext(c *gin.Context) {
	var req dto.ClaimNextRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.reviews.ClaimNext(c.Request.Context(), c.Param("country"), req.ReviewerID)
	if err != nil {
		writeError(c, err)
		return
	}
	if entry == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *HTTPHandler) claim(c *gin.Context) {
	var req dto.ClaimRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.reviews.Claim(c.Request.Context(), c.Param("country"), c.Param("videoId"), req.UserID, req.ReviewerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *HTTPHandler) release(c *gin.Context) {
	var req dto.ReleaseRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.reviews.Release(c.Request.Context(), c.Param("country"), c.Param("videoId"), req.UserID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) reviewSuccess(c *gin.Context) {
	var req dto.ReviewSuccessRequest
	if !bindJSON(c, &req) {
		return
	}
	err := h.reviews.CompleteReviewSuccess(c.Request.Context(), req.UserID, c.Param("videoId"), c.Param("country"), req.ReviewerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) reviewFailure(c *gin.Context) {
	var req dto.ReviewFailureRequest
	if !bindJSON(c, &req) {
		return
	}
	err := h.reviews.CompleteReviewFailed(c.Request.Context(), dto.ReviewFailure{
		RecordingUserID:       req.UserID,
		VideoID:               c.Param("videoId"),
		Country:               c.Param("country"),
		ReviewerID:            req.ReviewerID,
		Reason:                req.Reason,
		ReportedShots:         req.ReportedShots,
		ReviewerSelectedShots: req.ReviewerSelectedShots,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
