// Package scene is a small engine object model: game objects, their
// components and the assets they share. Every type implements
// archive.Node so a scene can be written with an archive.Archive.
//
// Scenes are usually built from a manifest (YAML or TOML) with
// [LoadManifest] and [Manifest.Build]. Identities are derived from object
// names within a namespace, so the same manifest always serializes to the
// same archive.
package scene
