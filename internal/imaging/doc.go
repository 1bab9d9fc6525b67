// Package imaging reports basic facts about image files handed to the
// client: pixel dimensions, format and size on disk.
//
// The server only ever returns paths, so nothing here decodes pixel data.
// Describe reads the image header, which is enough to tell the client how
// large an image is before it loads it. Decoders are registered for PNG,
// JPEG, GIF, BMP, TIFF and WebP.
package imaging
