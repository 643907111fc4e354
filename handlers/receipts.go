package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"price-tracker/models"
)

// AnalyzeReceipt reads the raw multipart body and runs the receipt
// pipeline. A body sent with "Content-Transfer-Encoding: base64" is
// decoded first.
func (h *Handlers) AnalyzeReceipt(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	base64Encoded := strings.EqualFold(c.GetHeader("Content-Transfer-Encoding"), "base64")
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, h.receipts.RejectOversized(body, c.GetHeader("Content-Type"), base64Encoded))
			return
		}
		c.JSON(http.StatusBadRequest, models.MessageResponse{Message: "No body received"})
		return
	}

	analysis, err := h.receipts.Analyze(c.Request.Context(), uid, body, c.GetHeader("Content-Type"), base64Encoded)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}
