// Package extract converts uploaded files into content chunks for the
// chunk store. Extraction is intentionally minimal: plain text is
// split into fixed-size passages, markdown additionally yields table
// and image chunks.
package extract
