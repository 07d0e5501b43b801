// Package runs drives a training run from a features file to a registered
// run directory.
//
// A run moves through these states:
//
//	loading -> validating -> sorting -> schema_extraction ->
//	environment_capture -> splitting_and_fitting -> persisting ->
//	registry_update -> done
//
// sorting is entered only when a time column is configured. schema_extraction and
// environment_capture are skipped in minimal mode. Any state may fail; a
// failed run never updates the registry, so latest.txt always names a run
// whose artifacts were fully written.
//
// The run directory is claimed on entry to splitting_and_fitting. A failure
// after that point leaves a partial directory under models/runs that no
// registry entry references.
package runs
