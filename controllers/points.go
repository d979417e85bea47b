package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cellscope/labeltransfer"
)

type GeneratePointsInput struct {
	Segmentation  [][]float64 `json:"segmentation" binding:"required"`
	BBox          []float64   `json:"bbox" binding:"required,len=4"`
	PositiveCount int         `json:"positive_count"`
	NegativeCount int         `json:"negative_count"`
}

// GeneratePoints Derive SAM seed points from a stored region's polygon so
// the same structure can be re-segmented on a neighboring slice. Positive
// points land inside the region, negative points just outside its bbox.
func GeneratePoints() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input GeneratePointsInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if input.PositiveCount < 1 || input.PositiveCount > 3 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "positive_count must be between 1 and 3"})
			return
		}
		if input.NegativeCount < 0 || input.NegativeCount > 3 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "negative_count must be between 0 and 3"})
			return
		}
		if len(input.Segmentation) == 0 || len(input.Segmentation[0]) < 6 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "segmentation must contain a ring with at least 3 points"})
			return
		}

		// Points are derived from the primary (first) ring of the region.
		ring := input.Segmentation[0]

		positive := labeltransfer.GeneratePositive(ring, input.PositiveCount)
		if positive == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "segmentation ring is not a valid polygon"})
			return
		}
		negative := labeltransfer.GenerateNegative(input.BBox, ring, input.NegativeCount)
		if negative == nil {
			negative = []labeltransfer.Point{}
		}

		c.JSON(http.StatusOK, gin.H{
			"positive_points": positive,
			"negative_points": negative,
		})
	}
}
