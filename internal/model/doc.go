// Package model defines the client-facing entity types for the CrewCall
// domain and the single place where loosely structured server documents are
// coerced into those types.
//
// The remote store returns documents with its own field conventions (raw
// identifiers under "_id", instants as ISO strings, tagged dates, or epoch
// milliseconds). Every cache goes through the mappers in this package on
// every read, so the coercion rules live in exactly one spot and are tested
// independently of any network behavior.
package model
