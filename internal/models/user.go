package models

import (
	"strings"
	"time"
)

// AdminUser is the Firestore profile of someone who can sign in to the console.
// The document id equals the Firebase Auth uid.
type AdminUser struct {
	ID           string    `firestore:"id" json:"id"`
	Email        string    `firestore:"email" json:"email"`
	DisplayName  string    `firestore:"displayName,omitempty" json:"displayName,omitempty"`
	CreatedDate  time.Time `firestore:"createdDate" json:"createdDate"`
	LastModified time.Time `firestore:"lastModified" json:"lastModified"`
}

// PublicUser is an email subscriber stored in the public project.
// The document id is the normalized email address.
type PublicUser struct {
	ID             string    `firestore:"id" json:"id"`
	Email          string    `firestore:"email" json:"email"`
	FirstName      string    `firestore:"firstName,omitempty" json:"firstName,omitempty"`
	LastName       string    `firestore:"lastName,omitempty" json:"lastName,omitempty"`
	OptInConfirmed bool      `firestore:"optInConfirmed" json:"optInConfirmed"`
	ImportSource   string    `firestore:"importSource,omitempty" json:"importSource,omitempty"`
	CreatedDate    time.Time `firestore:"createdDate" json:"createdDate"`
	ModifiedDate   time.Time `firestore:"modifiedDate" json:"modifiedDate"`
}

// EmailSubscriber is the name the console uses for a PublicUser.
type EmailSubscriber = PublicUser

// NormalizeEmail lower-cases and trims an address so it can serve as a document id.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
