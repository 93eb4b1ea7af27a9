package entities

import (
	"time"

	"github.com/aarondl/null/v8"

	"rental-system/internal/workflow"
)

// Order — заявка на аренду медицинского оборудования. Движок workflow сам
// заявку не меняет: он только валидирует предложенную мутацию, мутацию
// выполняет сервис заявок.
type Order struct {
	ID          uint64               `json:"id"`
	Number      string               `json:"number"`
	Status      workflow.OrderStatus `json:"status"`
	PatientName string               `json:"patientName"`
	CreatorID   uint64               `json:"creatorId"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	CompletedAt null.Time            `json:"completedAt,omitempty"`
}
