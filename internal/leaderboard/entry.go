// Package leaderboard keeps the ranked score list: validation, sorting and
// capping, pluggable storage, the HTTP routes, and a client for remote boards.
package leaderboard

import (
	"errors"
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxEntries caps the stored list
	DefaultMaxEntries = 100
	// MaxNameLength is the longest accepted name, in characters
	MaxNameLength = 20
)

var (
	ErrNameRequired = errors.New("name is required")
	ErrInvalidScore = errors.New("score must be a non-negative whole number")
	ErrNameTooLong  = errors.New("name too long (max 20 chars)")
)

// Entry is one ranked score. Date is RFC 3339 UTC.
type Entry struct {
	ID    string `json:"id" msgpack:"id"`
	Name  string `json:"name" msgpack:"name"`
	Score int    `json:"score" msgpack:"score"`
	Date  string `json:"date" msgpack:"date"`
}

// ValidateName trims name and checks it is non-empty and short enough
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameRequired
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}

// sortAndCap orders entries by descending score, keeping earlier entries
// ahead on ties, and drops everything past limit
func sortAndCap(entries []Entry, limit int) []Entry {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return b.Score - a.Score
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// Rank returns the 1-based position of the first entry matching name and
// score, or 0 when the pair is not on the list
func Rank(entries []Entry, name string, score int) int {
	for i, e := range entries {
		if e.Name == name && e.Score == score {
			return i + 1
		}
	}
	return 0
}
