package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type DonationType string

const (
	DonationTypeGoSanrakshan     DonationType = "Go Sanrakshan Daan"
	DonationTypeMandirNirman     DonationType = "Mandir Nirman"
	DonationTypeMandirSanrakshan DonationType = "Mandir Sanrakshan"
	DonationTypeGeneral          DonationType = "General"
)

// AllDonationTypes lists the categories in display order.
var AllDonationTypes = []DonationType{
	DonationTypeGoSanrakshan,
	DonationTypeMandirNirman,
	DonationTypeMandirSanrakshan,
	DonationTypeGeneral,
}

func (t DonationType) IsValid() bool {
	for _, known := range AllDonationTypes {
		if t == known {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusReceived PaymentStatus = "Received"
	PaymentStatusPledged  PaymentStatus = "Pledged"
)

func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusReceived || s == PaymentStatusPledged
}

// Creator is the user that recorded a donation.
type Creator struct {
	ID       uuid.UUID `json:"_id"`
	Name     string    `json:"name"`
	Username string    `json:"username"`
}

type Donation struct {
	ID               uuid.UUID     `json:"_id" db:"id"`
	TenantID         uuid.UUID     `json:"mandir" db:"tenant_id"`
	DonorName        string        `json:"donorName" db:"donor_name"`
	Address          string        `json:"address" db:"address"`
	PhoneNumber      string        `json:"phoneNumber" db:"phone_number"`
	Amount           float64       `json:"amount" db:"amount"`
	DonationDate     time.Time     `json:"donationDate" db:"donation_date"`
	DonationType     DonationType  `json:"donationType" db:"donation_type"`
	PaymentStatus    PaymentStatus `json:"paymentStatus" db:"payment_status"`
	ReceiptNumber    string        `json:"receiptNumber" db:"receipt_number"`
	RemindersSent    int           `json:"remindersSent" db:"reminders_sent"`
	LastReminderDate *time.Time    `json:"lastReminderDate,omitempty" db:"last_reminder_date"`
	CreatedByID      *uuid.UUID    `json:"-" db:"created_by"`
	CreatedBy        *Creator      `json:"createdBy,omitempty" db:"-"`
	CreatedAt        time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time     `json:"updatedAt" db:"updated_at"`
}

// CreateDonationRequest is the body of POST /donations. Amount is a pointer
// so that a missing amount can be told apart from zero.
type CreateDonationRequest struct {
	DonorName     string        `json:"donorName"`
	Address       string        `json:"address"`
	PhoneNumber   string        `json:"phoneNumber"`
	Amount        *float64      `json:"amount"`
	DonationDate  string        `json:"donationDate,omitempty"`
	DonationType  DonationType  `json:"donationType"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
}

type UpdateStatusRequest struct {
	PaymentStatus PaymentStatus `json:"paymentStatus"`
}

// DonationFilter narrows a listing. Nil fields impose no constraint and
// both date bounds are inclusive.
type DonationFilter struct {
	Status    *PaymentStatus
	Type      *DonationType
	StartDate *time.Time
	EndDate   *time.Time
}

type DonationSummary struct {
	TotalDonations    int64   `json:"totalDonations"`
	ReceivedDonations int64   `json:"receivedDonations"`
	PledgedDonations  int64   `json:"pledgedDonations"`
	TotalAmount       float64 `json:"totalAmount"`
	ReceivedAmount    float64 `json:"receivedAmount"`
	PledgedAmount     float64 `json:"pledgedAmount"`
}

// TypeBreakdown aggregates one donation category.
type TypeBreakdown struct {
	DonationType   DonationType `json:"donationType"`
	Count          int64        `json:"count"`
	TotalAmount    float64      `json:"totalAmount"`
	ReceivedAmount float64      `json:"receivedAmount"`
	PledgedAmount  float64      `json:"pledgedAmount"`
}

// FormatReceiptNumber renders prefix, four digit year and a six digit
// sequence, e.g. RCP2024000001.
func FormatReceiptNumber(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s%d%06d", prefix, year, seq)
}

// FormatAmount renders an amount without trailing zeros: 500, 500.5.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
