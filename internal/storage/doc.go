// Package storage persists relaxation runs on disk and exports them.
//
// Each run lives in its own directory:
//
//	<base>/<name>_<id>/metadata.json  run summary and solver settings
//	<base>/<name>_<id>/result.json    node and element results
//	<base>/<name>_<id>/history.csv    kinetic energy and residual per step
package storage
