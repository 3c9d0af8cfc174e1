// Package gdrive wraps a remote storage service with a small runtime
// policy layer: optional serialization of all calls on one client
// (in-process or cross-process), adaptive download throttling against a
// per-call speed ceiling, and bounded retry of transient transport
// failures during upload.
//
// The remote service itself sits behind the Service interface; a live
// Drive v3 implementation ships in the drive package and is wired up by
// New. Tests and alternative backends inject their own via NewWithService.
package gdrive
