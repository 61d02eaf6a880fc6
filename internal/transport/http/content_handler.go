package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (a *API) listEvents(c *gin.Context) {
	month := 0
	if raw := c.Query("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "month must be a number")
			return
		}
		month = m
	}
	events, err := a.Content.Events(c.Request.Context(), month)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (a *API) listArtefacts(c *gin.Context) {
	artefacts := a.Content.Artefacts(c.Request.Context(), c.Query("category"), c.Query("q"))
	c.JSON(http.StatusOK, gin.H{"artefacts": artefacts})
}

func (a *API) getArtefact(c *gin.Context) {
	artefact, err := a.Content.Artefact(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"artefact": artefact})
}

func (a *API) listLearnContent(c *gin.Context) {
	content, err := a.Content.LearnContent(c.Request.Context(), c.Query("type"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": content})
}
