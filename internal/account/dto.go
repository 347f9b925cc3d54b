package account

import "errors"

// CreateAccountDTO is the request payload for creating an account.
type CreateAccountDTO struct {
	Code        string `json:"code" validate:"required"`
	Name        string `json:"name" validate:"required"`
	AccountType string `json:"account_type" validate:"required,oneof=asset liability equity revenue expense"`
	Subtype     string `json:"account_subtype,omitempty"`
	ParentID    *int64 `json:"parent_id,omitempty"`
	Description string `json:"description,omitempty"`
}

func (dto CreateAccountDTO) Validate() error {
	if dto.Code == "" {
		return errors.New("code is required")
	}
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if !Type(dto.AccountType).Valid() {
		return errors.New("account_type must be one of asset, liability, equity, revenue, expense")
	}
	return nil
}

// UpdateAccountDTO carries rename/reclassify changes. Nil fields are left
// untouched.
type UpdateAccountDTO struct {
	Name        *string `json:"name,omitempty"`
	Subtype     *string `json:"account_subtype,omitempty"`
	ParentID    *int64  `json:"parent_id,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func (dto UpdateAccountDTO) Validate() error {
	if dto.Name != nil && *dto.Name == "" {
		return errors.New("name cannot be empty")
	}
	return nil
}
