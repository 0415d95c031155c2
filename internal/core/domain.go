package core

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const maxTitleLength = 200

type (
	User struct {
		ID           string        `json:"id"`
		Email        string        `json:"email"`
		Name         string        `json:"name"`
		Phone        string        `json:"phone"`
		ProfileImage string        `json:"profileImage"`
		Language     string        `json:"language"`
		Currency     string        `json:"currency"`
		Timezone     string        `json:"timezone"`
		Settings     *UserSettings `json:"settings"`
		CreatedAt    time.Time     `json:"createdAt"`
		UpdatedAt    time.Time     `json:"updatedAt"`
	}

	UserSettings struct {
		UserID             string    `json:"userId"`
		DarkMode           bool      `json:"darkMode"`
		EmailNotifications bool      `json:"emailNotifications"`
		TwoFactorEnabled   bool      `json:"twoFactorEnabled"`
		UpdatedAt          time.Time `json:"updatedAt"`
	}

	// ProfileUpdate applies only the non-empty fields.
	ProfileUpdate struct {
		Name     string `json:"name"`
		Phone    string `json:"phone"`
		Language string `json:"language"`
		Currency string `json:"currency"`
		Timezone string `json:"timezone"`
	}

	// SettingsUpdate applies only the fields present in the request.
	SettingsUpdate struct {
		DarkMode           *bool `json:"darkMode"`
		EmailNotifications *bool `json:"emailNotifications"`
		TwoFactorEnabled   *bool `json:"twoFactorEnabled"`
	}

	BankAccount struct {
		ID            string      `json:"id"`
		UserID        string      `json:"userId"`
		AccountName   string      `json:"accountName"`
		BankName      string      `json:"bankName"`
		AccountNumber string      `json:"accountNumber"`
		AccountType   AccountType `json:"accountType"`
		Balance       Money       `json:"balance"`
		Currency      string      `json:"currency"`
		CreatedAt     time.Time   `json:"createdAt"`
		UpdatedAt     time.Time   `json:"updatedAt"`
	}

	Expense struct {
		ID                 string          `json:"id"`
		UserID             string          `json:"userId"`
		Title              string          `json:"title"`
		Description        string          `json:"description"`
		Amount             Money           `json:"amount"`
		Category           ExpenseCategory `json:"category"`
		PaymentMethod      PaymentMethod   `json:"paymentMethod"`
		Date               Date            `json:"date"`
		IsRecurring        bool            `json:"isRecurring"`
		RecurringFrequency Frequency       `json:"recurringFrequency"`
		CreatedAt          time.Time       `json:"createdAt"`
		UpdatedAt          time.Time       `json:"updatedAt"`
	}

	Income struct {
		ID                 string         `json:"id"`
		UserID             string         `json:"userId"`
		Title              string         `json:"title"`
		Description        string         `json:"description"`
		Amount             Money          `json:"amount"`
		Category           IncomeCategory `json:"category"`
		Source             string         `json:"source"`
		Date               Date           `json:"date"`
		IsRecurring        bool           `json:"isRecurring"`
		RecurringFrequency Frequency      `json:"recurringFrequency"`
		CreatedAt          time.Time      `json:"createdAt"`
		UpdatedAt          time.Time      `json:"updatedAt"`
	}

	Tenant struct {
		ID             string        `json:"id"`
		UserID         string        `json:"userId"`
		Name           string        `json:"name"`
		Email          string        `json:"email"`
		Phone          string        `json:"phone"`
		Address        string        `json:"address"`
		RentAmount     Money         `json:"rentAmount"`
		RentDueDate    DayOfMonth    `json:"rentDueDate"`
		LeaseStartDate Date          `json:"leaseStartDate"`
		LeaseEndDate   *Date         `json:"leaseEndDate"`
		RentPayments   []RentPayment `json:"rentPayments"`
		CreatedAt      time.Time     `json:"createdAt"`
		UpdatedAt      time.Time     `json:"updatedAt"`
	}

	RentPayment struct {
		ID            string        `json:"id"`
		UserID        string        `json:"userId"`
		TenantID      string        `json:"tenantId"`
		Amount        Money         `json:"amount"`
		DueDate       Date          `json:"dueDate"`
		PaidDate      *Date         `json:"paidDate"`
		Status        RentStatus    `json:"status"`
		PaymentMethod PaymentMethod `json:"paymentMethod"`
		Notes         string        `json:"notes"`
		Tenant        *Tenant       `json:"tenant,omitempty"`
		CreatedAt     time.Time     `json:"createdAt"`
		UpdatedAt     time.Time     `json:"updatedAt"`
	}
)

// DayOfMonth is a rent due day (1-31). It decodes from JSON numbers or numeric strings.
type DayOfMonth int

func (d *DayOfMonth) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	n, err := strconv.Atoi(s)
	if err != nil {
		return ErrInvalidDay
	}
	*d = DayOfMonth(n)
	return nil
}

func (d DayOfMonth) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(d))
}

// Owner implements Owned.
func (a BankAccount) Owner() string { return a.UserID }
func (e Expense) Owner() string     { return e.UserID }
func (i Income) Owner() string      { return i.UserID }
func (t Tenant) Owner() string      { return t.UserID }
func (p RentPayment) Owner() string { return p.UserID }

// Normalize trims free text and fills defaults before validation.
func (a *BankAccount) Normalize() {
	a.AccountName = sanitize(a.AccountName)
	a.BankName = sanitize(a.BankName)
	a.AccountNumber = MaskAccountNumber(a.AccountNumber)
	a.Currency = strings.ToUpper(sanitize(a.Currency))
	if a.Currency == "" {
		a.Currency = "BDT"
	}
}

func (a BankAccount) Validate() error {
	if a.AccountName == "" {
		return invalid("accountName", "required")
	}
	if a.BankName == "" {
		return invalid("bankName", "required")
	}
	if !a.AccountType.IsValid() {
		return invalid("accountType", "must be one of savings, checking, business")
	}
	return nil
}

func (e *Expense) Normalize() {
	e.Title = sanitize(e.Title)
	e.Description = sanitize(e.Description)
}

func (e Expense) Validate() error {
	if err := validateTitle(e.Title); err != nil {
		return err
	}
	if !e.Amount.IsPositive() {
		return invalid("amount", "must be greater than zero")
	}
	if !e.Category.IsValid() {
		return invalid("category", "unknown expense category "+strconv.Quote(string(e.Category)))
	}
	if !e.PaymentMethod.IsValid() {
		return invalid("paymentMethod", "unknown payment method "+strconv.Quote(string(e.PaymentMethod)))
	}
	if e.Date.IsZero() {
		return invalid("date", "required")
	}
	if !e.RecurringFrequency.IsValid() {
		return invalid("recurringFrequency", "must be monthly, quarterly or yearly")
	}
	return nil
}

func (i *Income) Normalize() {
	i.Title = sanitize(i.Title)
	i.Description = sanitize(i.Description)
	i.Source = sanitize(i.Source)
}

func (i Income) Validate() error {
	if err := validateTitle(i.Title); err != nil {
		return err
	}
	if !i.Amount.IsPositive() {
		return invalid("amount", "must be greater than zero")
	}
	if !i.Category.IsValid() {
		return invalid("category", "unknown income category "+strconv.Quote(string(i.Category)))
	}
	if i.Date.IsZero() {
		return invalid("date", "required")
	}
	if !i.RecurringFrequency.IsValid() {
		return invalid("recurringFrequency", "must be monthly, quarterly or yearly")
	}
	return nil
}

func (t *Tenant) Normalize() {
	t.Name = sanitize(t.Name)
	t.Email = sanitize(t.Email)
	t.Phone = sanitize(t.Phone)
	t.Address = sanitize(t.Address)
	if t.LeaseEndDate != nil && t.LeaseEndDate.IsZero() {
		t.LeaseEndDate = nil
	}
}

func (t Tenant) Validate() error {
	if t.Name == "" {
		return invalid("name", "required")
	}
	if !t.RentAmount.IsPositive() {
		return invalid("rentAmount", "must be greater than zero")
	}
	if t.RentDueDate < 1 || t.RentDueDate > 31 {
		return ErrInvalidDay
	}
	if t.LeaseStartDate.IsZero() {
		return invalid("leaseStartDate", "required")
	}
	if t.LeaseEndDate != nil && t.LeaseEndDate.Before(t.LeaseStartDate) {
		return invalid("leaseEndDate", "must not be before leaseStartDate")
	}
	return nil
}

func (p *RentPayment) Normalize() {
	p.TenantID = strings.TrimSpace(p.TenantID)
	p.Notes = sanitize(p.Notes)
	if p.Status == "" {
		p.Status = RentPending
	}
	if p.PaidDate != nil && p.PaidDate.IsZero() {
		p.PaidDate = nil
	}
}

func (p RentPayment) Validate() error {
	if p.TenantID == "" {
		return invalid("tenantId", "required")
	}
	if !p.Amount.IsPositive() {
		return invalid("amount", "must be greater than zero")
	}
	if p.DueDate.IsZero() {
		return invalid("dueDate", "required")
	}
	if !p.Status.IsValid() {
		return invalid("status", "must be pending, paid or overdue")
	}
	if !p.PaymentMethod.IsValid() {
		return invalid("paymentMethod", "unknown payment method "+strconv.Quote(string(p.PaymentMethod)))
	}
	return nil
}

// Apply copies the non-empty profile fields onto u.
func (p ProfileUpdate) Apply(u *User) {
	if v := sanitize(p.Name); v != "" {
		u.Name = v
	}
	if v := sanitize(p.Phone); v != "" {
		u.Phone = v
	}
	if v := sanitize(p.Language); v != "" {
		u.Language = v
	}
	if v := sanitize(p.Currency); v != "" {
		u.Currency = strings.ToUpper(v)
	}
	if v := sanitize(p.Timezone); v != "" {
		u.Timezone = v
	}
}

// Apply copies the fields present in the update onto s.
func (u SettingsUpdate) Apply(s *UserSettings) {
	if u.DarkMode != nil {
		s.DarkMode = *u.DarkMode
	}
	if u.EmailNotifications != nil {
		s.EmailNotifications = *u.EmailNotifications
	}
	if u.TwoFactorEnabled != nil {
		s.TwoFactorEnabled = *u.TwoFactorEnabled
	}
}

// DefaultSettings returns the settings a new user starts with.
func DefaultSettings(userID string) UserSettings {
	return UserSettings{UserID: userID, EmailNotifications: true}
}

// MaskAccountNumber keeps only the last four digits: "0123456789" -> "****6789".
func MaskAccountNumber(s string) string {
	var digits []rune
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
		}
	}
	if len(digits) == 0 {
		return ""
	}
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return "****" + string(digits)
}

func validateTitle(title string) error {
	if title == "" {
		return invalid("title", "required")
	}
	if len(title) > maxTitleLength {
		return invalid("title", "too long (max 200 characters)")
	}
	return nil
}

// sanitize trims whitespace and drops control characters except tab and newlines.
func sanitize(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
