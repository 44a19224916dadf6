// Package search answers vector similarity queries over ingested documents.
package search
