// Package mocks holds in-memory fakes of the store, auth, generation and
// storage interfaces, shared by the service, task and api tests.
//
// Every fake works without configuration and exposes Fn fields to override
// single methods:
//
//	gen := mocks.NewMockGeneratorWithImage([]byte("png"))
//	gen.GenerateFn = func(ctx context.Context, prompt string) (*generation.Image, error) {
//		return nil, generation.ErrGenerationFailed
//	}
//
// The store fakes keep their data in exported maps so tests can seed and
// inspect state directly.
package mocks
