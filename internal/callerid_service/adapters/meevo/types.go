package meevo

import "github.com/keepitcut/callerid-lookup/internal/callerid_service/domain"

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// clientListResponse is the envelope shared by the /clients directory pages
// and the /cdc/clients change-feed pages. An empty Data slice marks the end
// of the directory (or feed).
type clientListResponse struct {
	Data []ClientRecord `json:"data"`
}

type clientDetailResponse struct {
	Data ClientRecord `json:"data"`
}

// ClientRecord is a client as the Meevo public API returns it. The directory
// listing carries only the primary phone; the direct-by-id and change-feed
// shapes additionally carry the phoneNumbers list.
type ClientRecord struct {
	ClientID           string        `json:"clientId"`
	FirstName          string        `json:"firstName"`
	LastName           string        `json:"lastName"`
	EmailAddress       string        `json:"emailAddress"`
	PrimaryPhoneNumber string        `json:"primaryPhoneNumber"`
	PhoneNumbers       []PhoneNumber `json:"phoneNumbers,omitempty"`
	CreatedDateUtc     string        `json:"createdDateUtc,omitempty"`
}

type PhoneNumber struct {
	Number string `json:"number"`
	Type   string `json:"type,omitempty"`
}

// MatchesPhone reports whether the record's primary phone or any secondary
// phone number normalizes to key. An empty key never matches.
func (r ClientRecord) MatchesPhone(key domain.PhoneKey) bool {
	if key.IsEmpty() {
		return false
	}
	if domain.NormalizePhone(r.PrimaryPhoneNumber) == key {
		return true
	}
	for _, pn := range r.PhoneNumbers {
		if domain.NormalizePhone(pn.Number) == key {
			return true
		}
	}
	return false
}

// Customer maps the upstream record to a resolved CustomerRecord.
func (r ClientRecord) Customer(src domain.Source) *domain.CustomerRecord {
	return &domain.CustomerRecord{
		ID:        r.ClientID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.EmailAddress,
		Phone:     r.PrimaryPhoneNumber,
		Source:    src,
	}
}
