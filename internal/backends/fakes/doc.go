// Package fakes provides in-memory test doubles for the native client
// interfaces in the contracts package.
//
// Every fake is safe for concurrent use and supports error injection through
// exported fields, so tests can drive each backend through its failure paths
// without the native facility being present.
package fakes
