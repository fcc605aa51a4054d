// Package mock provides a deterministic in-process encode.Embedder for tests.
package mock
