package engagementclient

// Wire shapes of the engagement platform API.

type userDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type requestDTO struct {
	ID         string `json:"id"`
	ExternalID string `json:"externalId"`
	Status     string `json:"status"`
}

type policyDTO struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	ExternalReference string `json:"externalReference"`
}
