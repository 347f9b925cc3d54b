package fund

import (
	"errors"
	"time"

	"github.com/stewardbooks/church-finance/internal"
)

var ErrNotFound = internal.ErrFundNotFound

// FundType distinguishes donor-restricted money from general funds.
type FundType string

const (
	TypeRestricted   FundType = "restricted"
	TypeUnrestricted FundType = "unrestricted"
)

func (t FundType) Valid() bool {
	return t == TypeRestricted || t == TypeUnrestricted
}

// Fund is a read-mostly reporting dimension on ledger entries.
type Fund struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	TenantID  string    `json:"tenant_id" gorm:"column:tenant_id;not null"`
	Name      string    `json:"name" gorm:"column:name;not null"`
	FundType  FundType  `json:"type" gorm:"column:fund_type;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Fund) TableName() string {
	return "funds"
}

// CreateFundDTO is the request payload for creating a fund.
type CreateFundDTO struct {
	Name string `json:"name" validate:"required"`
	Type string `json:"type" validate:"required,oneof=restricted unrestricted"`
}

func (dto CreateFundDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if !FundType(dto.Type).Valid() {
		return errors.New("type must be restricted or unrestricted")
	}
	return nil
}
