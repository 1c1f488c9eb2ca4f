// Package render draws key images: word-wrapped text on a rounded panel and
// a small set of vector icons.
//
// Text uses the embedded Go Regular font scaled to the key size. Icons are
// authored as SVG with svgo, rasterized with oksvg/rasterx and cached per
// key size. Surface implements the page drawing contract on top of a
// deck.Device.
package render
