package dtos

type ConnectRequest struct {
	Type     string  `json:"type"`
	Host     string  `json:"host" binding:"required"`
	Port     string  `json:"port"`
	User     *string `json:"user"`
	Password *string `json:"password"`
	Database string  `json:"database" binding:"required"`
}

type ConnectResponse struct {
	Database     string `json:"database"`
	Type         string `json:"type"`
	SessionToken string `json:"session_token"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}
