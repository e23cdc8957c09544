package nicolive

import "encoding/json"

// WatchPayload is the subset of the data-props tree the pipeline reads.
// Missing keys decode to zero values; the mapper decides which of them
// are required.
type WatchPayload struct {
	Program     ProgramPayload     `json:"program"`
	SocialGroup SocialGroupPayload `json:"socialGroup"`
}

type ProgramPayload struct {
	NicoliveProgramID string          `json:"nicoliveProgramId"`
	Title             string          `json:"title"`
	ProviderType      string          `json:"providerType"`
	Status            string          `json:"status"`
	BeginTime         *int64          `json:"beginTime"`
	EndTime           *int64          `json:"endTime"`
	Supplier          SupplierPayload `json:"supplier"`
}

// SupplierPayload holds the user profile of a community broadcast host.
type SupplierPayload struct {
	ProgramProviderID string `json:"programProviderId"`
	Name              string `json:"name"`
	PageURL           string `json:"pageUrl"`
}

// SocialGroupPayload holds the channel identity of a channel or
// official broadcast host.
type SocialGroupPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CompanyName string `json:"companyName"`
}

func DecodePayload(raw string) (*WatchPayload, error) {
	var payload WatchPayload
	err := json.Unmarshal([]byte(raw), &payload)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return &payload, nil
}
