package store

// Annotation A single annotated region on one image slice. Segmentation
// holds the multi-ring geometry: each ring is a flat implicitly-closed
// [x1,y1,x2,y2,...] list with at least 3 points. Holes are not
// representable.
type Annotation struct {
	ID           string      `json:"id"`
	ImageID      string      `json:"image_id"`
	ClassID      int         `json:"class_id"`
	ClassName    string      `json:"class_name"`
	Segmentation [][]float64 `json:"segmentation"`
	BBox         []float64   `json:"bbox"` // [x, y, width, height]
	Area         float64     `json:"area"`
	CreatedAt    string      `json:"created_at"`
}
