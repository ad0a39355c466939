package glyphmesh

import "errors"

// ErrTriangulationFailed is returned when no valid ear is found, or when no bridge between a hole and its outer polygon exists. It is wrapped with the polygon size or glyph that caused it.
var ErrTriangulationFailed = errors.New("triangulation failed")
