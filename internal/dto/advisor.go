package dto

// AdvisorTestRequest personalises the connection test.
type AdvisorTestRequest struct {
	Name string `json:"name" validate:"omitempty,max=80"`
}

// AdvisorResponse wraps generated advice. Fallback is set when the text is
// a fixed message rather than model output.
type AdvisorResponse struct {
	Text     string `json:"text"`
	Model    string `json:"model,omitempty"`
	Fallback bool   `json:"fallback"`
}
