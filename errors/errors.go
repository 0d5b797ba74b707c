// Package errors defines all exported error sentinels for the terasort
// engine.
//
// This is the single source of truth for error values. The top-level
// terasort package and its internal collaborators (recordio, cluster,
// oracle) all import from here, ensuring errors.Is checks work across
// package boundaries.
package errors

import "errors"

// Configuration errors (spec §7, "Configuration")
var (
	ErrBadArgs      = errors.New("terasort: wrong number or form of arguments")
	ErrEmptyNodes   = errors.New("terasort: nodes file contains no peers")
	ErrNoPivotsNeed = errors.New("terasort: sample size must be positive")
)

// I/O errors (spec §7, "I/O")
var (
	ErrShortRecord           = errors.New("terasort: short read, record truncated")
	ErrRecordCountMisaligned = errors.New("terasort: file size is not a multiple of the record length")
	ErrOutOfWindow           = errors.New("terasort: seek target outside mapped window")
	ErrClosed                = errors.New("terasort: reader or writer is closed")
	ErrOffsetOverflow        = errors.New("terasort: computed write offset exceeds file bounds")
	ErrPartSizeMisaligned    = errors.New("terasort: remote part file size is not a multiple of the record length")
)

// Invariant violations (spec §7, "Invariant violation")
var (
	ErrPivotMismatch  = errors.New("terasort: pivot list differs between peers")
	ErrRunLengthSum   = errors.New("terasort: sum of per-peer run lengths does not equal total record count")
	ErrChecksumFailed = errors.New("terasort: sub-bucket checksum mismatch after shuffle")
)

// Transport errors (spec §7, "Transport")
var (
	ErrTransportClosed = errors.New("terasort: transport is closed")
	ErrPeerUnknown     = errors.New("terasort: unknown peer id")
)
