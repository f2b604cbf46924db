package models

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var idPattern = regexp.MustCompile(`^[0-9a-f]{24}$`)

// NewID returns a fresh 24-character lowercase hex identifier.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID reports whether id is a well-formed record identifier.
func IsValidID(id string) bool {
	if !idPattern.MatchString(id) {
		return false
	}
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}
