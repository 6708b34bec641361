// Package gemini implements generation.Generator with Google's Imagen models
// through the google.golang.org/genai SDK.
//
// The generator asks for a single PNG and treats an empty result carrying a
// RAI filter reason as a content rejection.
package gemini
