// Package html extracts visible text from HTML documents.
//
// Script, style and head content is dropped and block-level elements
// become line breaks. Entities are decoded after tags are removed.
package html
