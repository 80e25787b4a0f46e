package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
	"github.com/vladislavdragonenkov/orderline/internal/dto"
)

const entityArticle = "Article"

func (h *handler) listArticles(c *gin.Context) {
	articles, err := h.Articles.ListArticles(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

func (h *handler) getArticle(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	article, err := h.Articles.GetArticle(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	found, ok := article.Get()
	if !ok {
		h.writeError(c, domain.ErrArticleNotFound)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (h *handler) createArticle(c *gin.Context) {
	in, ok := bindJSON[dto.ArticleDto](c)
	if !ok {
		return
	}

	created, err := h.Articles.CreateArticle(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	location(c, entityArticle, created.ArticleID)
	c.JSON(http.StatusCreated, created)
}

func (h *handler) updateArticle(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	in, ok := bindJSON[dto.ArticleDto](c)
	if !ok {
		return
	}
	if in.ArticleID != id {
		writeMessage(c, http.StatusBadRequest, msgArticleIDMismatch)
		return
	}

	if err := h.Articles.UpdateArticle(c.Request.Context(), in); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) deleteArticle(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.Articles.DeleteArticle(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
