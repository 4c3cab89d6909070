package response

import "github.com/happy2help/h2h-api/internal/domain"

type CapacityResponse struct {
	JobID    uint `json:"job_id"`
	Total    *int `json:"total_positions"`
	Occupied int  `json:"occupied_positions"`
	// Open is -1 for jobs without a position limit.
	Open int `json:"open_positions"`
}

func NewCapacityResponse(jobID uint, c domain.Capacity) CapacityResponse {
	return CapacityResponse{
		JobID:    jobID,
		Total:    c.Total,
		Occupied: c.Occupied,
		Open:     c.Open(),
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}
