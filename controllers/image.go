package controllers

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"cellscope/models"
	"cellscope/utils"
)

// FindImages Find all registered images
func FindImages(c *gin.Context) {
	var images []models.Image
	models.DB.Find(&images)

	c.JSON(http.StatusOK, gin.H{"data": images})
}

type CreateImageInput struct {
	Path       string `json:"path" binding:"required"`
	Identifier string `json:"identifier" binding:"required"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

// CreateImage Register a new image slice. Dimensions are probed from the
// file when the caller does not supply them.
func CreateImage(c *gin.Context) {
	// Validate input
	var input CreateImageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	width, height := input.Width, input.Height
	if width == 0 || height == 0 {
		w, h, err := utils.ImageSize(input.Path)
		if err != nil {
			log.Info(fmt.Sprintf("Cannot probe dimensions of %s: %v", input.Path, err))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		width, height = w, h
	}
	log.Info(fmt.Sprintf("Importing %s (%dx%d)", input.Path, width, height))

	image := models.Image{
		Identifier: input.Identifier,
		Filename:   filepath.Base(input.Path),
		Path:       input.Path,
		Width:      width,
		Height:     height,
	}
	models.DB.Create(&image)

	c.JSON(http.StatusOK, gin.H{"data": image})
}

// FindImage Find an image by its identifier
func FindImage(c *gin.Context) {
	var image models.Image

	if err := models.DB.Where("identifier = ?", c.Param("id")).First(&image).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found!"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": image})
}

type UpdateImageInput struct {
	Path       string `json:"path"`
	Identifier string `json:"identifier"`
}

// UpdateImage Update an image's path or identifier
func UpdateImage(c *gin.Context) {
	// Get model if exist
	var image models.Image
	if err := models.DB.Where("identifier = ?", c.Param("id")).First(&image).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found!"})
		return
	}

	// Validate input
	var input UpdateImageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	models.DB.Model(&image).Updates(models.Image{Path: input.Path, Identifier: input.Identifier})

	c.JSON(http.StatusOK, gin.H{"data": image})
}

// DeleteImage Delete an image record
func DeleteImage(c *gin.Context) {
	// Get model if exist
	var image models.Image
	if err := models.DB.Where("identifier = ?", c.Param("id")).First(&image).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found!"})
		return
	}

	models.DB.Delete(&image)

	c.JSON(http.StatusOK, gin.H{"data": true})
}
