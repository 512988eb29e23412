package dto

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Username  string `json:"username"`
	CSRFToken string `json:"csrfToken"`
	Message   string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
