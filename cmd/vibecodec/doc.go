// Package main implements the vibecodec command-line interface.
//
// The CLI extracts vibe transfer documents from PNG images and JSON files,
// embeds them back into images (as alpha-channel stealth data or as a PNG
// text chunk), inspects PNG chunk layouts, assembles bundles, and manages
// the local vibe library. Global flags select the configuration file, JSON
// output, and the log level.
package main
