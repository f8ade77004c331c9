// Package compositor defines the boundary to the video compositor that
// owns sources, scenes and scene items, plus an in-memory implementation
// used by the standalone server and tests.
package compositor

import "errors"

// Errors returned by compositor implementations.
var (
	// ErrReleased is returned when operating on a released source.
	ErrReleased = errors.New("compositor: source released")

	// ErrNotScene is returned when a scene operation targets a plain source.
	ErrNotScene = errors.New("compositor: source is not a scene")

	// ErrForeignSource is returned when a source from another compositor
	// is added to a scene.
	ErrForeignSource = errors.New("compositor: source belongs to another compositor")

	// ErrEmptyTypeID is returned by CreateSource without a source type.
	ErrEmptyTypeID = errors.New("compositor: empty source type id")
)

// BoundsType selects how a scene item fits its source into its bounds.
type BoundsType uint8

const (
	BoundsNone BoundsType = iota
	BoundsStretch
	BoundsScaleInner
	BoundsScaleOuter
	BoundsScaleToWidth
	BoundsScaleToHeight
	BoundsMaxOnly
)

// String returns the bounds type name.
func (b BoundsType) String() string {
	switch b {
	case BoundsNone:
		return "none"
	case BoundsStretch:
		return "stretch"
	case BoundsScaleInner:
		return "scale_inner"
	case BoundsScaleOuter:
		return "scale_outer"
	case BoundsScaleToWidth:
		return "scale_to_width"
	case BoundsScaleToHeight:
		return "scale_to_height"
	case BoundsMaxOnly:
		return "max_only"
	default:
		return "unknown"
	}
}

// Vec2 is a 2D position or extent in canvas pixels.
type Vec2 struct {
	X float32
	Y float32
}

// Compositor creates and looks up sources.
type Compositor interface {
	// CreateSource creates a source of the given type with initial settings.
	CreateSource(typeID, name string, settings *Settings) (Source, error)

	// CreateScene creates an empty scene.
	CreateScene(name string) (Source, error)

	// FindSource looks up an existing source or scene by name.
	FindSource(name string) (Source, bool)
}

// Source is a compositor element: a media source or a scene.
type Source interface {
	Name() string
	TypeID() string

	// Settings returns a copy of the current settings.
	Settings() *Settings

	// Update replaces the source settings.
	Update(settings *Settings)

	// Size returns the intrinsic size of the source.
	Size() (width, height uint32)

	// Scene returns the scene view of a scene source.
	Scene() (Scene, bool)

	// Release drops the caller's reference to the source.
	Release()
}

// Scene groups scene items.
type Scene interface {
	Source() Source

	// Add places src in the scene and returns the new item.
	Add(src Source) (SceneItem, error)
}

// SceneItem is the placement of a source inside a scene.
type SceneItem interface {
	Scene() Scene
	Source() Source

	// DeferUpdateBegin and DeferUpdateEnd bracket a batch of transform
	// changes that are applied together.
	DeferUpdateBegin()
	DeferUpdateEnd()

	SetPos(pos Vec2)
	SetBounds(t BoundsType, bounds Vec2)

	// Remove takes the item out of its scene.
	Remove()
}
