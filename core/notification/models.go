package notification

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
)

const (
	RecipientsStudents = "students"
	RecipientsAtRisk   = "at_risk"
	RecipientsCustom   = "custom"

	TypeGeneral = "general"

	// HistoryLimit caps the email history.
	HistoryLimit = 100
)

// Notification is the log entry of one email campaign.
type Notification struct {
	ID               int       `json:"id"`
	GymID            int       `json:"gym_id"`
	Subject          string    `json:"subject"`
	Message          string    `json:"message"`
	RecipientCount   int       `json:"recipient_count"`
	SentBy           string    `json:"sent_by"`
	SentAt           time.Time `json:"sent_at"` // UTC
	NotificationType string    `json:"notification_type"`
	RecipientType    string    `json:"recipient_type"`
}

// NewNotification is an email to send. RecipientCount is only read for custom recipients,
// which are counted but not delivered to.
type NewNotification struct {
	Subject          string `json:"subject" validate:"required,max=200"`
	Message          string `json:"message" validate:"required,max=10000"`
	NotificationType string `json:"notification_type" validate:"omitempty,alphanum_,max=50"`
	RecipientType    string `json:"recipient_type" validate:"omitempty,oneof=students at_risk custom"`
	RecipientCount   int    `json:"recipient_count" validate:"min=0"`
}

func (nn *NewNotification) Validate(validate *validator.Validate) error {
	nn.Subject = core.CleanString(nn.Subject)
	nn.Message = core.CleanString(nn.Message)
	nn.NotificationType = core.CleanString(nn.NotificationType, true /* lower */)
	nn.RecipientType = core.CleanString(nn.RecipientType, true /* lower */)
	if nn.NotificationType == "" {
		nn.NotificationType = TypeGeneral
	}
	if nn.RecipientType == "" {
		nn.RecipientType = RecipientsStudents
	}
	return validate.Struct(nn)
}

type SendResult struct {
	Message        string `json:"message"`
	RecipientCount int    `json:"recipient_count"`
	RecipientType  string `json:"recipient_type"`
	Notification   string `json:"notification"`
}
