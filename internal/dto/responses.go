package dto

import (
	"github.com/google/uuid"

	"github.com/okalab/okalab-backend/internal/domain/entity"
)

// EnrollResponse запись и признак, была ли она создана этим запросом.
type EnrollResponse struct {
	*entity.Enrollment
	Created bool `json:"created"`
}

// CountsResponse число активных записей по id семинара.
type CountsResponse map[string]int

func NewCountsResponse(counts map[uuid.UUID]int) CountsResponse {
	resp := make(CountsResponse, len(counts))
	for id, n := range counts {
		resp[id.String()] = n
	}
	return resp
}
