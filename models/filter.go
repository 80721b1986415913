package models

import "time"

// All is the selector value meaning "no constraint" on a dimension.
const All = "All"

// FilterCriteria is a snapshot of the active selection. An empty or All
// value leaves a dimension unconstrained; a zero Start or End leaves that
// side of the date range open.
type FilterCriteria struct {
	Platform  string    `json:"platform" yaml:"platform"`
	Sentiment string    `json:"sentiment" yaml:"sentiment"`
	MediaType string    `json:"media_type" yaml:"media_type"`
	Location  string    `json:"location" yaml:"location"`
	Start     time.Time `json:"start" yaml:"start"`
	End       time.Time `json:"end" yaml:"end"`
}

// Unconstrained reports whether v places no constraint on its dimension.
func Unconstrained(v string) bool {
	return v == "" || v == All
}

// FilterOptions lists the selectable values per dimension, each headed by All.
type FilterOptions struct {
	Platforms  []string  `json:"platforms" yaml:"platforms"`
	Sentiments []string  `json:"sentiments" yaml:"sentiments"`
	MediaTypes []string  `json:"media_types" yaml:"media_types"`
	Locations  []string  `json:"locations" yaml:"locations"`
	MinDate    time.Time `json:"min_date" yaml:"min_date"`
	MaxDate    time.Time `json:"max_date" yaml:"max_date"`
}
