// Package extractors turns stored documents into page text.
//
// Each sub-package implements driven.TextExtractor for one family of file
// formats. The Registry dispatches on file extension and falls back to PDF
// for files without one, which is how uploads from the HTTP API arrive
// most of the time.
package extractors
