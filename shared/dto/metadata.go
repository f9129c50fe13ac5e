package dto

import (
	"spacebook/shared/constant"
	"spacebook/shared/model"
	"spacebook/shared/timezone"
	"time"
)

// Metadata is the audit block embedded in responses.
type Metadata struct {
	CreatedAt  string `json:"createdAt,omitempty"`
	ModifiedAt string `json:"modifiedAt,omitempty"`
	CreatedBy  string `json:"createdBy,omitempty"`
	ModifiedBy string `json:"modifiedBy,omitempty"`
}

// Timestamp renders t in the application zone. The zero time renders empty.
func Timestamp(t time.Time) string {
	if t.IsZero() {
		return constant.Empty
	}

	return timezone.Format(t, constant.DateFormat)
}

func NewMetadata(metadata model.Metadata) Metadata {
	return Metadata{
		CreatedAt:  Timestamp(metadata.CreatedAt),
		ModifiedAt: Timestamp(metadata.ModifiedAt),
		CreatedBy:  metadata.CreatedBy,
		ModifiedBy: metadata.ModifiedBy,
	}
}

func (m *Metadata) FromModel(metadata model.Metadata) {
	*m = NewMetadata(metadata)
}
