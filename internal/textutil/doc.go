// Package textutil provides text helpers shared by search and blacklist
// display: Unicode case folding for case-insensitive matching, whitespace
// collapsing, and first-line extraction from multi-line backend messages.
package textutil
