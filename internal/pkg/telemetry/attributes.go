package telemetry

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys used for instrumentation.
const (
	AttrBoundaryID  = attribute.Key("parcelarea.boundary.id")
	AttrSegments    = attribute.Key("parcelarea.boundary.segments")
	AttrVertices    = attribute.Key("parcelarea.boundary.vertices")
	AttrAreaSqm     = attribute.Key("parcelarea.boundary.area_sqm")
	AttrSimple      = attribute.Key("parcelarea.boundary.simple")
	AttrRendered    = attribute.Key("parcelarea.render.ok")
	AttrRenderCache = attribute.Key("parcelarea.render.cache")
)
