package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ctessum/geom"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"cellscope/geometry"
	"cellscope/store"
)

// statusFromStoreError Map the store error taxonomy to HTTP status codes.
func statusFromStoreError(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidOperation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// FindAnnotations List all annotations of an image in creation order.
func FindAnnotations(s *store.AnnotationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		annotations, err := s.ListByImage(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if annotations == nil {
			annotations = []store.Annotation{}
		}
		c.JSON(http.StatusOK, gin.H{"data": annotations})
	}
}

type CreateAnnotationInput struct {
	ClassID      int         `json:"class_id"`
	ClassName    string      `json:"class_name" binding:"required"`
	Segmentation [][]float64 `json:"segmentation" binding:"required"`
	BBox         []float64   `json:"bbox" binding:"required"`
	Area         float64     `json:"area"`
}

// CreateAnnotation Store a new annotation. The caller supplies the full
// geometry triple (segmentation, bbox, area); it is stored verbatim.
func CreateAnnotation(s *store.AnnotationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateAnnotationInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		annotation, err := s.Create(c.Param("id"), input.ClassID, input.ClassName,
			input.Segmentation, input.BBox, input.Area)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": annotation})
	}
}

// FindAnnotation Look up a single annotation by id across all images.
func FindAnnotation(s *store.AnnotationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		annotation, err := s.FindByID(c.Param("id"))
		if err != nil {
			c.JSON(statusFromStoreError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": annotation})
	}
}

type UpdateAnnotationInput struct {
	ClassID   *int    `json:"class_id"`
	ClassName *string `json:"class_name"`
}

// UpdateAnnotation Change the classification labels of an annotation.
// Only supplied fields change; the geometry is untouched.
func UpdateAnnotation(s *store.AnnotationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UpdateAnnotationInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		annotation, err := s.Update(c.Param("id"), input.ClassID, input.ClassName)
		if err != nil {
			c.JSON(statusFromStoreError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": annotation})
	}
}

// DeleteAnnotation Delete an annotation by id.
func DeleteAnnotation(s *store.AnnotationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		deleted, err := s.Delete(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"error": "Record not found!"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": true})
	}
}

type MergeAnnotationsInput struct {
	AnnotationIDs []string `json:"annotation_ids" binding:"required"`
	ClassID       int      `json:"class_id"`
	ClassName     string   `json:"class_name" binding:"required"`
}

// MergeAnnotations Merge two or more annotations of one image into a new
// annotation holding the union of their geometries. The sources are
// destroyed.
func MergeAnnotations(s *store.AnnotationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input MergeAnnotationsInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		annotation, err := s.Merge(input.AnnotationIDs, input.ClassID, input.ClassName)
		if err != nil {
			log.Debug(fmt.Sprintf("Merge of %d annotations rejected: %v", len(input.AnnotationIDs), err))
			c.JSON(statusFromStoreError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": annotation})
	}
}

type BrushPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type BrushAnnotationInput struct {
	Path      []BrushPoint `json:"path" binding:"required"`
	Radius    float64      `json:"radius"`
	Operation string       `json:"operation" binding:"required,oneof=add remove"`
}

// BrushAnnotation Sculpt an annotation with a brush stroke, growing
// ("add") or shrinking ("remove") its region.
func BrushAnnotation(s *store.AnnotationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input BrushAnnotationInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		path := make([]geom.Point, 0, len(input.Path))
		for _, p := range input.Path {
			path = append(path, geom.Point{X: p.X, Y: p.Y})
		}

		annotation, err := s.ApplyBrush(c.Param("id"), path, input.Radius,
			geometry.Operation(input.Operation))
		if err != nil {
			c.JSON(statusFromStoreError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": annotation})
	}
}

// ExportAnnotations Dump every annotation grouped by image id.
func ExportAnnotations(s *store.AnnotationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		all, err := s.AllAnnotations()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": all})
	}
}
