// Package storage loads and saves record batches.
//
// A location is either a local path or an s3://bucket/key URL. The format
// follows the extension: ".json" is an array of objects, anything else is
// CSV with a header row and every field quoted. Local writes go to a
// temporary file in the destination directory that is renamed into place,
// so a batch is either written whole or not at all.
package storage
