// Package store persists annotation records as one JSON collection per
// image and orchestrates the geometry engine for merge and brush edits.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ctessum/geom"
	log "github.com/sirupsen/logrus"
	uuid "github.com/twinj/uuid"

	"cellscope/geometry"
)

var (
	// ErrNotFound The requested annotation id does not exist on any image.
	ErrNotFound = errors.New("annotation not found")
	// ErrInvalidOperation The request violates an operation precondition or
	// the geometric result is unusable.
	ErrInvalidOperation = errors.New("invalid operation")
)

// AnnotationStore Durable per-image annotation collections backed by one
// JSON file per image id. Mutations rewrite the whole collection; access
// is expected to be request-serialized by the caller.
type AnnotationStore struct {
	dir string
}

// NewAnnotationStore Create a store rooted at dir, creating it if needed.
func NewAnnotationStore(dir string) (*AnnotationStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create annotation directory %s: %w", dir, err)
	}
	log.Info("Annotation store at ", dir)
	return &AnnotationStore{dir: dir}, nil
}

// collectionPath JSON file holding the collection of one image.
func (s *AnnotationStore) collectionPath(imageID string) string {
	return filepath.Join(s.dir, imageID+".json")
}

// load Read an image's collection; an unknown image yields an empty list.
func (s *AnnotationStore) load(imageID string) ([]Annotation, error) {
	data, err := os.ReadFile(s.collectionPath(imageID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var annotations []Annotation
	if err := json.Unmarshal(data, &annotations); err != nil {
		return nil, fmt.Errorf("corrupt annotation collection for image %s: %w", imageID, err)
	}
	return annotations, nil
}

// save Rewrite an image's whole collection.
func (s *AnnotationStore) save(imageID string, annotations []Annotation) error {
	data, err := json.MarshalIndent(annotations, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.collectionPath(imageID), data, 0o644)
}

// imageIDs All image ids that currently have a collection on disk.
func (s *AnnotationStore) imageIDs() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, strings.TrimSuffix(filepath.Base(f), ".json"))
	}
	return ids, nil
}

// ListByImage All annotations of one image in creation order. An unknown
// image is an empty list, never an error.
func (s *AnnotationStore) ListByImage(imageID string) ([]Annotation, error) {
	return s.load(imageID)
}

// AllAnnotations Every non-empty collection, grouped by image id.
func (s *AnnotationStore) AllAnnotations() (map[string][]Annotation, error) {
	ids, err := s.imageIDs()
	if err != nil {
		return nil, err
	}
	all := make(map[string][]Annotation)
	for _, imageID := range ids {
		annotations, err := s.load(imageID)
		if err != nil {
			return nil, err
		}
		if len(annotations) > 0 {
			all[imageID] = annotations
		}
	}
	return all, nil
}

// Create Append a new annotation to an image's collection. The caller's
// geometry triple is stored verbatim; nothing is recomputed.
func (s *AnnotationStore) Create(imageID string, classID int, className string, segmentation [][]float64, bbox []float64, area float64) (*Annotation, error) {
	annotations, err := s.load(imageID)
	if err != nil {
		return nil, err
	}
	annotation := Annotation{
		ID:           uuid.NewV4().String(),
		ImageID:      imageID,
		ClassID:      classID,
		ClassName:    className,
		Segmentation: segmentation,
		BBox:         bbox,
		Area:         area,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	annotations = append(annotations, annotation)
	if err := s.save(imageID, annotations); err != nil {
		return nil, err
	}
	return &annotation, nil
}

// locate Find an annotation by id across all collections.
func (s *AnnotationStore) locate(id string) (imageID string, index int, annotations []Annotation, err error) {
	ids, err := s.imageIDs()
	if err != nil {
		return "", 0, nil, err
	}
	for _, imageID := range ids {
		annotations, err := s.load(imageID)
		if err != nil {
			return "", 0, nil, err
		}
		for i, annotation := range annotations {
			if annotation.ID == id {
				return imageID, i, annotations, nil
			}
		}
	}
	return "", 0, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// FindByID Global lookup by annotation id.
func (s *AnnotationStore) FindByID(id string) (*Annotation, error) {
	_, i, annotations, err := s.locate(id)
	if err != nil {
		return nil, err
	}
	annotation := annotations[i]
	return &annotation, nil
}

// Update Change the classification labels of an annotation. Nil fields are
// left untouched; the geometry never changes here.
func (s *AnnotationStore) Update(id string, classID *int, className *string) (*Annotation, error) {
	imageID, i, annotations, err := s.locate(id)
	if err != nil {
		return nil, err
	}
	if classID != nil {
		annotations[i].ClassID = *classID
	}
	if className != nil {
		annotations[i].ClassName = *className
	}
	if err := s.save(imageID, annotations); err != nil {
		return nil, err
	}
	annotation := annotations[i]
	return &annotation, nil
}

// Delete Remove an annotation. Reports false when the id is unknown.
func (s *AnnotationStore) Delete(id string) (bool, error) {
	imageID, i, annotations, err := s.locate(id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	annotations = append(annotations[:i], annotations[i+1:]...)
	return true, s.save(imageID, annotations)
}

// Merge Union two or more annotations of one image into a single new
// annotation. The sources are destroyed and a fresh record with a new id,
// the supplied class and the unioned geometry is appended to the image's
// collection.
func (s *AnnotationStore) Merge(ids []string, classID int, className string) (*Annotation, error) {
	if len(ids) < 2 {
		return nil, fmt.Errorf("%w: merge requires at least 2 annotations", ErrInvalidOperation)
	}

	sources := make([]*Annotation, 0, len(ids))
	for _, id := range ids {
		annotation, err := s.FindByID(id)
		if err != nil {
			return nil, err
		}
		sources = append(sources, annotation)
	}

	imageID := sources[0].ImageID
	for _, annotation := range sources[1:] {
		if annotation.ImageID != imageID {
			return nil, fmt.Errorf("%w: annotations belong to different images", ErrInvalidOperation)
		}
	}

	segmentations := make([][][]float64, 0, len(sources))
	for _, annotation := range sources {
		segmentations = append(segmentations, annotation.Segmentation)
	}
	result, err := geometry.MergeUnion(segmentations)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOperation, err)
	}

	for _, id := range ids {
		if _, err := s.Delete(id); err != nil {
			return nil, err
		}
	}
	log.Info(fmt.Sprintf("Merged %d annotations on image %s", len(ids), imageID))

	return s.Create(imageID, classID, className, result.Segmentation, result.BBox, result.Area)
}

// ApplyBrush Sculpt one annotation with a brush stroke. The geometry,
// bbox and area are replaced in place; id, image and labels are kept. A
// stroke that erases the shape completely is rejected and leaves the
// stored record untouched.
func (s *AnnotationStore) ApplyBrush(id string, path []geom.Point, radius float64, op geometry.Operation) (*Annotation, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("%w: brush radius must be positive", ErrInvalidOperation)
	}
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: brush path is empty", ErrInvalidOperation)
	}
	if op != geometry.OpAdd && op != geometry.OpRemove {
		return nil, fmt.Errorf("%w: unknown brush operation %q", ErrInvalidOperation, op)
	}

	imageID, i, annotations, err := s.locate(id)
	if err != nil {
		return nil, err
	}

	result, err := geometry.ApplyBrush(annotations[i].Segmentation, path, radius, op)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOperation, err)
	}

	annotations[i].Segmentation = result.Segmentation
	annotations[i].BBox = result.BBox
	annotations[i].Area = result.Area
	if err := s.save(imageID, annotations); err != nil {
		return nil, err
	}
	annotation := annotations[i]
	return &annotation, nil
}
