// Package emulators starts Google Cloud emulators in containers for integration tests.
package emulators

// ImageContainer names an emulator image and the ports it listens on.
type ImageContainer struct {
	EmulatorImage    string
	EmulatorHTTPPort string
	EmulatorGRPCPort string
}

// GCImageContainer is an ImageContainer for a Google Cloud emulator.
// SetEnvVariables exports the emulator host variable the client libraries read.
type GCImageContainer struct {
	ImageContainer
	ProjectID       string
	SetEnvVariables bool
}
