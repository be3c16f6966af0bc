package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidDate indicates an archive date that is not YYYYMMDD.
	ErrInvalidDate = errors.New("invalid date")

	// ErrSyncInProgress indicates a sync is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Semantic re-ranking and embedding sync are disabled without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLexicalUnavailable indicates no lexical scorer is configured.
	ErrLexicalUnavailable = errors.New("lexical scorer unavailable")

	// ErrEmbeddingMismatch indicates the embedding service returned a
	// different number of vectors than texts it was given.
	ErrEmbeddingMismatch = errors.New("embedding output does not match input")
)
