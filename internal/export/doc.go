// Package export renders stored runs as SVG images.
package export
