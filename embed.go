package basicseo

import "embed"

// EmbeddedAssets contains the stylesheets of the built-in views, served
// under /public/basicseo/.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
