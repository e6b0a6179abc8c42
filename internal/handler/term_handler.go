package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hemantwpdev/post-sync-translate/internal/model"
	"github.com/hemantwpdev/post-sync-translate/internal/pkg/response"
	"github.com/hemantwpdev/post-sync-translate/internal/repo"
)

type TermHandler struct {
	terms *repo.TermRepo
}

func NewTermHandler(terms *repo.TermRepo) *TermHandler {
	return &TermHandler{terms: terms}
}

func (h *TermHandler) List(c *gin.Context) {
	taxonomy := c.DefaultQuery("taxonomy", model.TaxonomyCategory)
	if taxonomy != model.TaxonomyCategory && taxonomy != model.TaxonomyTag {
		response.Error(c, http.StatusBadRequest, "unknown taxonomy")
		return
	}
	terms, err := h.terms.ListByTaxonomy(c.Request.Context(), taxonomy)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"terms": terms})
}
