package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/castpass/castpass/internal/application/payment/dto"
	"github.com/castpass/castpass/internal/shared/constants"
	"github.com/castpass/castpass/internal/shared/errors"
	"github.com/castpass/castpass/internal/shared/logger"
	"github.com/castpass/castpass/internal/shared/utils"
)

type PremiumHandler struct {
	service premiumService
	logger  logger.Interface
}

func NewPremiumHandler(service premiumService, logger logger.Interface) *PremiumHandler {
	return &PremiumHandler{
		service: service,
		logger:  logger,
	}
}

// Verify handles POST /api/v1/premium/verify. Every completed attempt is a
// 200 whose data says whether premium was granted; only malformed input and
// unexpected faults use error statuses.
func (h *PremiumHandler) Verify(c *gin.Context) {
	var req dto.VerifyPremiumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid verify request", "error", err)
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	if !h.authorizeFID(c, req.FID) {
		return
	}

	result, err := h.service.Verify(c.Request.Context(), req.FID, req.WalletAddress, req.Network)
	if err != nil {
		h.logger.Errorw("failed to verify premium payment", "error", err, "fid", req.FID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	message := "payment not verified"
	if result.Verified {
		message = "premium activated"
	}
	utils.SuccessResponse(c, http.StatusOK, message, result)
}

// Status handles GET /api/v1/premium/status?fid=&walletAddress=.
func (h *PremiumHandler) Status(c *gin.Context) {
	fid, err := utils.ParseUint64Query(c, "fid")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	wallet := c.Query("walletAddress")
	if wallet == "" {
		utils.ErrorResponseWithError(c, errors.NewValidationError("walletAddress is required"))
		return
	}

	if !h.authorizeFID(c, fid) {
		return
	}

	status, err := h.service.Status(c.Request.Context(), fid, wallet)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", status)
}

// authorizeFID rejects the request when the auth middleware bound the caller
// to a different fid. Without auth there is nothing to check.
func (h *PremiumHandler) authorizeFID(c *gin.Context, fid uint64) bool {
	value, exists := c.Get(constants.ContextKeyFID)
	if !exists {
		return true
	}

	callerFID, ok := value.(uint64)
	if !ok || callerFID != fid {
		h.logger.Warnw("fid does not match token subject", "fid", fid, "token_fid", value)
		utils.ErrorResponseWithError(c, errors.NewForbiddenError("fid does not belong to the authenticated user"))
		return false
	}
	return true
}
