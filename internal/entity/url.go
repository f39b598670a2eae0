// Package entity defines the entities and errors used in the application.
// It includes the URL struct, which represents a stored short link mapping,
// and the error taxonomy shared by the use cases and adapters.
package entity

import (
	"strconv"
	"time"
)

// URL represents a shortened URL.
type URL struct {
	ID          int64     // ID is the store-assigned identifier and the default short identifier.
	OriginalURL string    // OriginalURL is the full URL, always stored with a scheme.
	CustomAlias *string   // CustomAlias is the optional user-chosen short identifier.
	Visits      int64     // Visits is the number of successful resolutions.
	CreatedAt   time.Time // CreatedAt is the timestamp when the URL was created.
}

// ShortIdentifier returns the identifier that resolves to the URL: the custom
// alias when one was accepted, the decimal ID otherwise.
func (u *URL) ShortIdentifier() string {
	if u.CustomAlias != nil && *u.CustomAlias != "" {
		return *u.CustomAlias
	}
	return strconv.FormatInt(u.ID, 10)
}
