package models

// BusinessCard is the professional card attached to a profile
type BusinessCard struct {
	Company  string `json:"company,omitempty"`
	Role     string `json:"role,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Website  string `json:"website,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
}

// CandidateProfile is a discoverable user. The core only relies on ID;
// everything else is carried through for display.
type CandidateProfile struct {
	ID           string        `json:"id"`
	Name         string        `json:"name,omitempty"`
	Age          int           `json:"age,omitempty"`
	Images       []string      `json:"images,omitempty"`
	Bio          string        `json:"bio,omitempty"`
	Skills       []string      `json:"skills,omitempty"`
	BusinessCard *BusinessCard `json:"businessCard,omitempty"`
}
