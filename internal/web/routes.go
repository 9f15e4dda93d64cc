// Package web serves the Garmin query surface over HTTP. The handlers
// only see garmin.Source, so the same routes work for the live client
// and the bulk-export reader.
package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sstent/garminbulk-go/internal/garmin"
)

type Handler struct {
	source garmin.Source
}

func NewHandler(source garmin.Source) *Handler {
	return &Handler{source: source}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)
	router.GET("/device", h.Device)
	router.GET("/stats", h.Stats)
	router.GET("/sleep", h.Sleep)
	router.GET("/hydration", h.Hydration)
	router.GET("/activities", h.Activities)
	router.GET("/activities/last", h.LastActivity)
	router.GET("/activities/:id/download", h.Download)
}

func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func (h *Handler) Device(c *gin.Context) {
	device, err := h.source.GetDeviceLastUsed()
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, device)
}

func (h *Handler) Stats(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	stats, err := h.source.GetStats(date)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) Sleep(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	data, err := h.source.GetSleepData(date)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *Handler) Hydration(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	data, err := h.source.GetHydrationData(date)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *Handler) Activities(c *gin.Context) {
	startDate := c.Query("startDate")
	endDate := c.Query("endDate")
	if startDate == "" || endDate == "" {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	activities, err := h.source.GetActivitiesByDate(startDate, endDate)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, activities)
}

func (h *Handler) LastActivity(c *gin.Context) {
	activity, err := h.source.GetLastActivity()
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, activity)
}

func (h *Handler) Download(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	format := garmin.ParseDownloadFormat(c.DefaultQuery("format", "original"))

	data, err := h.source.DownloadActivity(id, format)
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	c.Data(http.StatusOK, "application/zip", data)
}
