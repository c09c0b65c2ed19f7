// Package models defines the shared entities of the wedding portal as they
// travel on the wire between the server snapshot store and client mirrors.
// JSON field names are the wire names.
package models
