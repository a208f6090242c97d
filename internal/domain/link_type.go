package domain

import (
	"fmt"

	svcErr "github.com/oggyb/homies/internal/errors"
)

// LinkType names one of the lists a user can ask for.
type LinkType string

const (
	LinkMatched   LinkType = "Matched"
	LinkFavorites LinkType = "Favorites"
	LinkIgnored   LinkType = "Ignored"
	LinkAdmirers  LinkType = "Admirers"
)

// LinkTypes lists every valid link type.
var LinkTypes = []LinkType{LinkMatched, LinkFavorites, LinkIgnored, LinkAdmirers}

// ParseLinkType validates a raw link type.
func ParseLinkType(s string) (LinkType, error) {
	t := LinkType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", svcErr.ErrInvalidRelationshipType, s)
	}
	return t, nil
}

// Valid reports whether t is one of the four link types.
func (t LinkType) Valid() bool {
	switch t {
	case LinkMatched, LinkFavorites, LinkIgnored, LinkAdmirers:
		return true
	}
	return false
}
