package models

import "strings"

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleAffiliate Role = "AFFILIATE"
)

// ParseRole accepts any casing and rejects anything outside the known roles.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleAffiliate:
		return RoleAffiliate, true
	}
	return "", false
}

type UserStatus string

const (
	UserStatusPending   UserStatus = "PENDING"
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusInactive  UserStatus = "INACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusPending, UserStatusActive, UserStatusInactive, UserStatusSuspended:
		return true
	}
	return false
}

type ReferralStatus string

const (
	ReferralPending  ReferralStatus = "PENDING"
	ReferralApproved ReferralStatus = "APPROVED"
	ReferralRejected ReferralStatus = "REJECTED"
	ReferralRefunded ReferralStatus = "REFUNDED"
	ReferralCanceled ReferralStatus = "CANCELED"
)

func (s ReferralStatus) Valid() bool {
	switch s {
	case ReferralPending, ReferralApproved, ReferralRejected, ReferralRefunded, ReferralCanceled:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "PENDING"
	TransactionCompleted TransactionStatus = "COMPLETED"
	TransactionRefunded  TransactionStatus = "REFUNDED"
	TransactionFailed    TransactionStatus = "FAILED"
	TransactionPaid      TransactionStatus = "PAID"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionPending, TransactionCompleted, TransactionRefunded, TransactionFailed, TransactionPaid:
		return true
	}
	return false
}

type PayoutStatus string

const (
	PayoutPending    PayoutStatus = "PENDING"
	PayoutProcessing PayoutStatus = "PROCESSING"
	PayoutCompleted  PayoutStatus = "COMPLETED"
	PayoutFailed     PayoutStatus = "FAILED"
)

func (s PayoutStatus) Valid() bool {
	switch s {
	case PayoutPending, PayoutProcessing, PayoutCompleted, PayoutFailed:
		return true
	}
	return false
}

// Terminal payouts accept no further status change.
func (s PayoutStatus) Terminal() bool {
	return s == PayoutCompleted || s == PayoutFailed
}

type ConversionEventType string

const (
	EventClick    ConversionEventType = "CLICK"
	EventPurchase ConversionEventType = "PURCHASE"
)

type ConversionStatus string

const (
	ConversionPending  ConversionStatus = "PENDING"
	ConversionApproved ConversionStatus = "APPROVED"
)

const (
	PayoutMethodBankTransfer = "Bank Transfer"
	PayoutMethodPayPal       = "PayPal"
)
