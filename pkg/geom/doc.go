// Package geom defines the shared geometry vocabulary for Caliper: point sets
// built on sdfx vectors, dimensionality classes, axes, rotation matrices and
// the error sentinels the geometry packages wrap.
package geom
