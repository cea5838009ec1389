// Package testutil provides testing utilities for ansel.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe random source and generators for
// realistic item fixtures.
//
// # Item Generation
//
//	rng := testutil.NewRNG(seed)
//	items := testutil.Items(rng, 500)
//
// The same seed always produces the same items, so property-style tests
// stay reproducible.
package testutil
